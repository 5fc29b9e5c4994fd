package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// adminHeader identifies the acting admin on destructive calls, which the
// backend records in its audit trail.
func adminHeader(adminID int64) map[string]string {
	return map[string]string{"adminUserId": strconv.FormatInt(adminID, 10)}
}

// Admins.

func (c *Client) ListAdmins(ctx context.Context) ([]User, error) {
	var admins []User
	if err := c.getJSON(ctx, "/api/auth/admins", nil, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

func (c *Client) GetAdmin(ctx context.Context, id int64) (User, error) {
	var admin User
	err := c.getJSON(ctx, fmt.Sprintf("/api/auth/admin/%d", id), nil, &admin)
	return admin, err
}

func (c *Client) CreateAdmin(ctx context.Context, req AdminRequest) (string, error) {
	return c.sendText(ctx, http.MethodPost, "/api/auth/admin/create", req, nil)
}

func (c *Client) UpdateAdmin(ctx context.Context, id int64, admin User) (string, error) {
	return c.sendText(ctx, http.MethodPut, fmt.Sprintf("/api/auth/admin/edit/%d", id), admin, nil)
}

func (c *Client) DeleteAdmin(ctx context.Context, id, actingAdminID int64) (string, error) {
	return c.sendText(ctx, http.MethodDelete, fmt.Sprintf("/api/auth/admin/delete/%d", id), nil, adminHeader(actingAdminID))
}

// Doctors.

func (c *Client) ListDoctors(ctx context.Context) ([]Doctor, error) {
	var doctors []Doctor
	if err := c.getJSON(ctx, "/api/admin/doctors", nil, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

func (c *Client) GetDoctor(ctx context.Context, id int64) (Doctor, error) {
	var doctor Doctor
	err := c.getJSON(ctx, fmt.Sprintf("/api/admin/doctors/%d", id), nil, &doctor)
	return doctor, err
}

func (c *Client) CreateDoctor(ctx context.Context, req DoctorRequest) (string, error) {
	return c.sendText(ctx, http.MethodPost, "/api/admin/doctors/create", req, nil)
}

func (c *Client) UpdateDoctor(ctx context.Context, id int64, req DoctorRequest) (string, error) {
	return c.sendText(ctx, http.MethodPut, fmt.Sprintf("/api/admin/doctors/%d/update", id), req, nil)
}

func (c *Client) DeleteDoctor(ctx context.Context, id, actingAdminID int64) (string, error) {
	return c.sendText(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/doctors/%d/delete", id), nil, adminHeader(actingAdminID))
}

// Patients.

func (c *Client) ListPatients(ctx context.Context) ([]Patient, error) {
	var patients []Patient
	if err := c.getJSON(ctx, "/api/patients/getAllPatients", nil, &patients); err != nil {
		return nil, err
	}
	return patients, nil
}

func (c *Client) GetPatient(ctx context.Context, id int64) (Patient, error) {
	var patient Patient
	err := c.getJSON(ctx, fmt.Sprintf("/api/patients/%d", id), nil, &patient)
	return patient, err
}

func (c *Client) AddPatient(ctx context.Context, patient Patient) (Patient, error) {
	var created Patient
	err := c.sendJSON(ctx, http.MethodPost, "/api/patients/addpatient", patient, &created)
	return created, err
}

func (c *Client) UpdatePatient(ctx context.Context, id int64, patient Patient) (Patient, error) {
	var updated Patient
	err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/api/patients/%d/edit", id), patient, &updated)
	return updated, err
}

func (c *Client) DeletePatient(ctx context.Context, id int64) (string, error) {
	return c.sendText(ctx, http.MethodDelete, fmt.Sprintf("/api/patients/%d/delete", id), nil, nil)
}

// Visits.

func (c *Client) ListVisits(ctx context.Context, patientID int64) ([]Visit, error) {
	var visits []Visit
	if err := c.getJSON(ctx, fmt.Sprintf("/api/visits/%d", patientID), nil, &visits); err != nil {
		return nil, err
	}
	return visits, nil
}

func (c *Client) AddVisit(ctx context.Context, visit Visit) (Visit, error) {
	var created Visit
	err := c.sendJSON(ctx, http.MethodPost, "/api/visits/add", visit, &created)
	return created, err
}

func (c *Client) UpdateVisit(ctx context.Context, visitID int64, visit Visit) (Visit, error) {
	var updated Visit
	err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/api/visits/%d/update", visitID), visit, &updated)
	return updated, err
}

func (c *Client) DeleteVisit(ctx context.Context, visitID int64) (string, error) {
	return c.sendText(ctx, http.MethodDelete, fmt.Sprintf("/api/visits/%d/delete", visitID), nil, nil)
}

// Medicines.

func medicineScope(companyID, medicineID int64) map[string]string {
	return map[string]string{
		"companyId":  strconv.FormatInt(companyID, 10),
		"medicineId": strconv.FormatInt(medicineID, 10),
	}
}

func (c *Client) ListMedicinesByCompany(ctx context.Context, companyID int64) ([]Medicine, error) {
	var medicines []Medicine
	if err := c.getJSON(ctx, fmt.Sprintf("/api/medicines/by-company/%d", companyID), nil, &medicines); err != nil {
		return nil, err
	}
	return medicines, nil
}

func (c *Client) GetMedicine(ctx context.Context, companyID, medicineID int64) (Medicine, error) {
	var medicine Medicine
	err := c.getJSON(ctx, "/api/medicines/getMedicineById", medicineScope(companyID, medicineID), &medicine)
	return medicine, err
}

func (c *Client) SearchMedicines(ctx context.Context, namePrefix string) ([]Medicine, error) {
	var medicines []Medicine
	if err := c.getJSON(ctx, "/api/medicines/search", map[string]string{"name": namePrefix}, &medicines); err != nil {
		return nil, err
	}
	return medicines, nil
}

func (c *Client) AddMedicine(ctx context.Context, req AddMedicineRequest) (string, error) {
	return c.sendText(ctx, http.MethodPost, "/api/medicines/add", req, nil)
}

func (c *Client) UpdateMedicine(ctx context.Context, companyID, medicineID int64, medicine Medicine) (string, error) {
	req := c.request(ctx).
		SetQueryParams(medicineScope(companyID, medicineID)).
		SetHeader("Content-Type", "application/json").
		SetBody(medicine)
	body, err := c.execute(req, http.MethodPut, "/api/medicines/update")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

func (c *Client) DeleteMedicine(ctx context.Context, companyID, medicineID int64) (string, error) {
	req := c.request(ctx).SetQueryParams(medicineScope(companyID, medicineID))
	body, err := c.execute(req, http.MethodDelete, "/api/medicines/delete")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// UploadDataset streams a CSV catalog to the backend for bulk import.
func (c *Client) UploadDataset(ctx context.Context, companyID int64, fileName string, file io.Reader) (string, error) {
	return c.upload(ctx, "/api/medicines/upload-dataset", "file", fileName, file, map[string]string{
		"companyId": strconv.FormatInt(companyID, 10),
	})
}

// Pharma companies.

func (c *Client) ListPharmaCompanies(ctx context.Context) ([]PharmaCompany, error) {
	var companies []PharmaCompany
	if err := c.getJSON(ctx, "/api/pharma/all", nil, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

func (c *Client) GetPharmaCompany(ctx context.Context, id int64) (PharmaCompany, error) {
	var company PharmaCompany
	err := c.getJSON(ctx, fmt.Sprintf("/api/pharma/%d", id), nil, &company)
	return company, err
}

func (c *Client) RegisterPharmaCompany(ctx context.Context, req PharmaRegisterRequest) (string, error) {
	return c.sendText(ctx, http.MethodPost, "/api/pharma/register", req, nil)
}

func (c *Client) UpdatePharmaCompany(ctx context.Context, id int64, company PharmaCompany) (string, error) {
	return c.sendText(ctx, http.MethodPut, fmt.Sprintf("/api/pharma/update/%d", id), company, nil)
}

func (c *Client) DeletePharmaCompany(ctx context.Context, id, actingAdminID int64) (string, error) {
	return c.sendText(ctx, http.MethodDelete, fmt.Sprintf("/api/pharma/delete/%d", id), nil, adminHeader(actingAdminID))
}

// Drug interactions.

// CheckInteraction looks up known interactions between two drugs. When none
// exist the backend answers with a plain text notice instead of a list; the
// notice is returned alongside an empty slice.
func (c *Client) CheckInteraction(ctx context.Context, drug1, drug2 string) ([]DrugInteraction, string, error) {
	req := c.request(ctx).SetQueryParams(map[string]string{
		"drug1": drug1,
		"drug2": drug2,
	})
	body, err := c.execute(req, http.MethodGet, "/api/interactions/check")
	if err != nil {
		return nil, "", err
	}

	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, trimmed, nil
	}

	var interactions []DrugInteraction
	if err := json.Unmarshal(body, &interactions); err != nil {
		return nil, "", fmt.Errorf("decoding backend response: %w", err)
	}
	return interactions, "", nil
}

func (c *Client) SearchInteractions(ctx context.Context, namePrefix string) ([]DrugInteraction, error) {
	var interactions []DrugInteraction
	if err := c.getJSON(ctx, "/api/interactions/search", map[string]string{"name": namePrefix}, &interactions); err != nil {
		return nil, err
	}
	return interactions, nil
}

// Favorites.

func (c *Client) AddFavorite(ctx context.Context, doctorID, companyID int64) (string, error) {
	return c.sendText(ctx, http.MethodPost, fmt.Sprintf("/favorites/add/%d/%d", doctorID, companyID), nil, nil)
}

func (c *Client) RemoveFavorite(ctx context.Context, doctorID, companyID int64) (string, error) {
	return c.sendText(ctx, http.MethodDelete, fmt.Sprintf("/favorites/remove/%d/%d", doctorID, companyID), nil, nil)
}

func (c *Client) IsFavorite(ctx context.Context, doctorID, companyID int64) (bool, error) {
	var exists bool
	err := c.getJSON(ctx, fmt.Sprintf("/favorites/exists/%d/%d", doctorID, companyID), nil, &exists)
	return exists, err
}

// Audit trail.

func (c *Client) ListActionLogs(ctx context.Context) ([]ActionLog, error) {
	var logs []ActionLog
	if err := c.getJSON(ctx, "/api/action-logs", nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// Ingredients.

// IngredientDescription looks up the description text for an active
// ingredient. Unknown names come back as *APIError with status 404.
func (c *Client) IngredientDescription(ctx context.Context, name string) (string, error) {
	return c.getText(ctx, "/api/ingredients/description", map[string]string{"name": name})
}
