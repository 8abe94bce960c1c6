package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Image is a stored file reference: a path relative to the media root on
// the way in, and usually an absolute URL once resolved for a response.
// The empty reference encodes as JSON null.
type Image string

func (i Image) MarshalJSON() ([]byte, error) {
	if i == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(i))
}

func (i *Image) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*i = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*i = Image(s)
	return nil
}

func (i Image) Value() (driver.Value, error) {
	return string(i), nil
}

// Scan treats NULL columns as no image.
func (i *Image) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*i = ""
	case []byte:
		*i = Image(v)
	case string:
		*i = Image(v)
	default:
		return fmt.Errorf("model: cannot scan %T into Image", src)
	}
	return nil
}
