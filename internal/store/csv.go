package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/uptrace/bun"
)

// Recreate drops the four tables and reloads them from the CSV exports in
// csvDir: patients.csv, visits.csv, prescriptions.csv, medications.csv.
func Recreate(ctx context.Context, db *bun.DB, csvDir string) error {
	if err := DropTables(ctx, db); err != nil {
		return fmt.Errorf("dropping tables: %w", err)
	}
	if err := InitDB(ctx, db); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	patients, err := loadPatients(filepath.Join(csvDir, "patients.csv"))
	if err != nil {
		return err
	}
	visits, err := loadVisits(filepath.Join(csvDir, "visits.csv"))
	if err != nil {
		return err
	}
	prescriptions, err := loadPrescriptions(filepath.Join(csvDir, "prescriptions.csv"))
	if err != nil {
		return err
	}
	medications, err := loadMedications(filepath.Join(csvDir, "medications.csv"))
	if err != nil {
		return err
	}

	if len(patients) > 0 {
		if _, err := db.NewInsert().Model(&patients).Exec(ctx); err != nil {
			return fmt.Errorf("inserting patients: %w", err)
		}
	}
	if len(visits) > 0 {
		if _, err := db.NewInsert().Model(&visits).Exec(ctx); err != nil {
			return fmt.Errorf("inserting visits: %w", err)
		}
	}
	if len(prescriptions) > 0 {
		if _, err := db.NewInsert().Model(&prescriptions).Exec(ctx); err != nil {
			return fmt.Errorf("inserting prescriptions: %w", err)
		}
	}
	if len(medications) > 0 {
		if _, err := db.NewInsert().Model(&medications).Exec(ctx); err != nil {
			return fmt.Errorf("inserting medications: %w", err)
		}
	}
	return nil
}

// readCSV returns the records after the header row, mapped by header name.
func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				record[col] = row[i]
			}
		}
		records = append(records, record)
	}
	return records, nil
}

func atoi(record map[string]string, col string) (int64, error) {
	n, err := strconv.ParseInt(record[col], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", col, err)
	}
	return n, nil
}

func loadPatients(path string) ([]Patient, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	patients := make([]Patient, 0, len(records))
	for _, rec := range records {
		id, err := atoi(rec, "patient_id")
		if err != nil {
			return nil, err
		}
		age, err := atoi(rec, "age")
		if err != nil {
			return nil, err
		}
		patients = append(patients, Patient{
			PatientID: id,
			Name:      rec["name"],
			Age:       int(age),
			Gender:    rec["gender"],
		})
	}
	return patients, nil
}

func loadVisits(path string) ([]Visit, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	visits := make([]Visit, 0, len(records))
	for _, rec := range records {
		id, err := atoi(rec, "visit_id")
		if err != nil {
			return nil, err
		}
		patientID, err := atoi(rec, "patient_id")
		if err != nil {
			return nil, err
		}
		visits = append(visits, Visit{
			VisitID:   id,
			PatientID: patientID,
			Date:      rec["date"],
			Reason:    rec["reason"],
		})
	}
	return visits, nil
}

func loadPrescriptions(path string) ([]Prescription, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	prescriptions := make([]Prescription, 0, len(records))
	for _, rec := range records {
		id, err := atoi(rec, "id")
		if err != nil {
			return nil, err
		}
		visitID, err := atoi(rec, "visit_id")
		if err != nil {
			return nil, err
		}
		medID, err := atoi(rec, "med_id")
		if err != nil {
			return nil, err
		}
		prescriptions = append(prescriptions, Prescription{
			ID:      id,
			VisitID: visitID,
			MedID:   medID,
			Dosage:  rec["dosage"],
		})
	}
	return prescriptions, nil
}

func loadMedications(path string) ([]Medication, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	medications := make([]Medication, 0, len(records))
	for _, rec := range records {
		id, err := atoi(rec, "med_id")
		if err != nil {
			return nil, err
		}
		medications = append(medications, Medication{
			MedID:    id,
			Name:     rec["name"],
			Category: rec["category"],
		})
	}
	return medications, nil
}
