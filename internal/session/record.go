package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"pos_terminal/internal/models"
)

// persistedRecord uses pointers so a missing key is distinguishable from an
// empty value.
type persistedRecord struct {
	EmployeeID *string `json:"employeeId"`
	Username   *string `json:"username"`
	FullName   *string `json:"fullName"`
	Position   *string `json:"position"`
}

func decodeUserRecord(raw string) (*models.UserRecord, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()

	var rec persistedRecord
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after user record")
	}

	switch {
	case rec.EmployeeID == nil:
		return nil, errors.New("missing employeeId")
	case rec.Username == nil:
		return nil, errors.New("missing username")
	case rec.FullName == nil:
		return nil, errors.New("missing fullName")
	case rec.Position == nil:
		return nil, errors.New("missing position")
	}

	record := models.UserRecord{
		EmployeeID: *rec.EmployeeID,
		Username:   *rec.Username,
		FullName:   *rec.FullName,
		Position:   models.Role(*rec.Position),
	}
	if err := validateUserRecord(record); err != nil {
		return nil, err
	}
	return &record, nil
}

func validateUserRecord(record models.UserRecord) error {
	if record.EmployeeID == "" {
		return errors.New("empty employeeId")
	}
	if record.Username == "" {
		return errors.New("empty username")
	}
	if !record.Position.Valid() {
		return fmt.Errorf("unknown position %q", record.Position)
	}
	return nil
}
