package model

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	apperrors "rta-sync/internal/shared/errors"
)

// IndexSpec names the two fields of a partition's compound index, both ascending.
type IndexSpec struct {
	DateField string `json:"date_field" yaml:"date_field"`
	IDField   string `json:"id_field" yaml:"id_field"`
}

// Name returns the name MongoDB gives the index by default.
func (s IndexSpec) Name() string {
	return fmt.Sprintf("%s_1_%s_1", s.DateField, s.IDField)
}

// Validate checks that both fields are named and distinct
func (s IndexSpec) Validate() error {
	if strings.TrimSpace(s.DateField) == "" || strings.TrimSpace(s.IDField) == "" {
		return apperrors.NewValidationError("index spec needs a date field and an id field")
	}
	if s.DateField == s.IDField {
		return apperrors.NewValidationError("index spec fields must differ").WithDetail("field", s.DateField)
	}
	return nil
}

// Dataset describes one upstream collection and the partition it lands in.
type Dataset struct {
	Name      string        `json:"name" yaml:"name"`
	SourceURL string        `json:"source_url" yaml:"source_url"`
	Partition string        `json:"partition" yaml:"partition"`
	Index     IndexSpec     `json:"index" yaml:"index"`
	Frequency time.Duration `json:"frequency" yaml:"-"`
}

// Validate checks the dataset can be extracted and purged
func (d Dataset) Validate() error {
	ve := apperrors.NewValidationErrors()
	if d.Name == "" {
		ve.Add("name", "must be set", d.Name)
	}
	if d.Partition == "" {
		ve.Add("partition", "must be set", d.Partition)
	}
	if u, err := url.Parse(d.SourceURL); err != nil || u.Scheme == "" || u.Host == "" {
		ve.Add("source_url", "must be an absolute URL", d.SourceURL)
	}
	if err := d.Index.Validate(); err != nil {
		ve.Add("index", err.Error(), d.Index)
	}
	if d.Frequency < time.Second {
		ve.Add("frequency", "must be at least one second", d.Frequency.String())
	}
	if ve.HasErrors() {
		return ve.ToAppError().WithDetail("dataset", d.Name)
	}
	return nil
}

// Credentials authenticate against the remote source with HTTP Basic auth
type Credentials struct {
	Username string
	Password string
}

// String keeps the password out of logs
func (c Credentials) String() string {
	if c.Password == "" {
		return c.Username
	}
	return c.Username + ":******"
}
