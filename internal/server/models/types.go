package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// CommaSeparatedStrings is a list of strings stored in a single text column.
type CommaSeparatedStrings []string

func (s CommaSeparatedStrings) Value() (driver.Value, error) {
	return strings.Join([]string(s), ","), nil
}

func (s *CommaSeparatedStrings) Scan(v interface{}) error {
	var raw string
	switch t := v.(type) {
	case string:
		raw = t
	case []byte:
		raw = string(t)
	case nil:
		*s = nil
		return nil
	default:
		return fmt.Errorf("cannot scan %T into CommaSeparatedStrings", v)
	}

	if raw == "" {
		*s = CommaSeparatedStrings{}
		return nil
	}

	*s = CommaSeparatedStrings(strings.Split(raw, ","))

	return nil
}

func (CommaSeparatedStrings) GormDataType() string {
	return "text"
}

func (s CommaSeparatedStrings) Contains(value string) bool {
	for _, item := range s {
		if item == value {
			return true
		}
	}

	return false
}
