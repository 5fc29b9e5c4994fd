package gateway

// Wire types exchanged with the management backend. Field tags follow the
// backend's JSON property names exactly; do not rename them without a
// matching backend change.

// User is an account record. Admin listings return bare users; doctors and
// pharma companies embed one.
type User struct {
	ID          int64  `json:"id,omitempty"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password,omitempty"`
	Role        string `json:"role,omitempty"`
	ContactInfo string `json:"contactInfo"`
}

// Doctor is a doctor profile. Its id matches the embedded user's id.
type Doctor struct {
	ID             int64  `json:"id,omitempty"`
	User           User   `json:"user"`
	Specialization string `json:"specialization"`
}

// DoctorRequest is the payload for creating or updating a doctor. UserID
// identifies the admin performing the change, for the audit trail.
type DoctorRequest struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Password       string `json:"password,omitempty"`
	ContactInfo    string `json:"contactInfo"`
	Specialization string `json:"specialization"`
	UserID         int64  `json:"userId,omitempty"`
}

// AdminRequest is the payload for creating an admin account. AdminID
// identifies the acting admin.
type AdminRequest struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password,omitempty"`
	ContactInfo string `json:"contactInfo"`
	AdminID     int64  `json:"adminId,omitempty"`
}

// Patient is a patient record including its visit history.
type Patient struct {
	ID          int64   `json:"id,omitempty"`
	Name        string  `json:"name"`
	BloodType   string  `json:"bloodType"`
	Gender      string  `json:"gender"`
	Age         int     `json:"age"`
	PhoneNumber string  `json:"phoneNumber"`
	History     string  `json:"history"`
	Visits      []Visit `json:"visits,omitempty"`
}

// Visit is one patient visit. VisitDate travels as yyyy-MM-dd.
type Visit struct {
	ID                 int64  `json:"id,omitempty"`
	PatientID          int64  `json:"patientId,omitempty"`
	DoctorID           int64  `json:"doctorId,omitempty"`
	VisitDate          string `json:"visitDate"`
	Diagnosis          string `json:"diagnosis"`
	Symptoms           string `json:"symptoms"`
	PrescribedMedicine string `json:"prescribedMedicine"`
	TreatmentEffect    string `json:"treatmentEffect"`
}

// Medicine is one catalog entry. The backend stores up to two substitutes,
// three uses and three side effects as flat columns.
type Medicine struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Substitute0 string `json:"substitute0"`
	Substitute1 string `json:"substitute1"`
	Use0        string `json:"use0"`
	Use1        string `json:"use1"`
	Use2        string `json:"use2"`
	SideEffect0 string `json:"sideeffect0"`
	SideEffect1 string `json:"sideeffect1"`
	SideEffect2 string `json:"sideeffect2"`
}

// AddMedicineRequest creates a medicine under a company's catalog.
type AddMedicineRequest struct {
	Medicine
	CompanyID int64 `json:"companyId"`
}

// PharmaCompany is a pharmaceutical company profile.
type PharmaCompany struct {
	ID       int64  `json:"id,omitempty"`
	User     User   `json:"user"`
	Location string `json:"location"`
}

// PharmaRegisterRequest registers a new pharma company account.
type PharmaRegisterRequest struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password,omitempty"`
	ContactInfo string `json:"contactInfo"`
	Location    string `json:"location"`
	AdminID     int64  `json:"adminId,omitempty"`
}

// DrugInteraction describes a known interaction between two drugs.
type DrugInteraction struct {
	ID                     int64  `json:"id,omitempty"`
	Drug1                  string `json:"drug1"`
	Drug2                  string `json:"drug2"`
	InteractionDescription string `json:"interactionDescription"`
}

// ActionLog is one audit trail entry.
type ActionLog struct {
	ID        int64  `json:"id,omitempty"`
	Action    string `json:"action"`
	Details   string `json:"details"`
	Username  string `json:"username"`
	UserID    int64  `json:"userId"`
	Timestamp string `json:"timestamp"`
}

// Credentials is the parsed outcome of a successful login.
type Credentials struct {
	FullName string
	Role     string
	UserID   int64
}
