package store

import "github.com/uptrace/bun"

// Flat rows loaded verbatim from the CSV exports. Foreign keys are plain
// columns, matching the source data.

type Patient struct {
	bun.BaseModel `bun:"table:patients,alias:p"`
	PatientID     int64  `bun:"patient_id,pk" json:"patient_id"`
	Name          string `bun:"name" json:"name"`
	Age           int    `bun:"age" json:"age"`
	Gender        string `bun:"gender" json:"gender"`
}

type Visit struct {
	bun.BaseModel `bun:"table:visits,alias:v"`
	VisitID       int64  `bun:"visit_id,pk" json:"visit_id"`
	PatientID     int64  `bun:"patient_id" json:"patient_id"`
	Date          string `bun:"date" json:"date"`
	Reason        string `bun:"reason" json:"reason"`
}

type Prescription struct {
	bun.BaseModel `bun:"table:prescriptions,alias:rx"`
	ID            int64  `bun:"id,pk" json:"id"`
	VisitID       int64  `bun:"visit_id" json:"visit_id"`
	MedID         int64  `bun:"med_id" json:"med_id"`
	Dosage        string `bun:"dosage" json:"dosage"`
}

type Medication struct {
	bun.BaseModel `bun:"table:medications,alias:m"`
	MedID         int64  `bun:"med_id,pk" json:"med_id"`
	Name          string `bun:"name" json:"name"`
	Category      string `bun:"category" json:"category"`
}

// TableNames lists the four healthcare tables in load order.
var TableNames = []string{"patients", "visits", "prescriptions", "medications"}
