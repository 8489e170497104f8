package config

import (
	"fmt"
	"os"
	"time"

	"rta-sync/internal/extraction/domain/model"
	apperrors "rta-sync/internal/shared/errors"

	"gopkg.in/yaml.v3"
)

// datasetsFile is the YAML layout of DATASETS_FILE:
//
//	datasets:
//	  - name: labs
//	    source_url: https://rta.example.com/ords/labs
//	    partition: labs_json
//	    index: {date_field: lab_date, id_field: empi}
//	    frequency_minutes: 15
type datasetsFile struct {
	Datasets []datasetEntry `yaml:"datasets"`
}

type datasetEntry struct {
	model.Dataset    `yaml:",inline"`
	FrequencyMinutes int `yaml:"frequency_minutes"`
}

// LoadDatasetsFile reads and validates a YAML dataset list. Partition names
// must be unique.
func LoadDatasetsFile(path string) ([]model.Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("cannot read datasets file %s", path)).WithCause(err)
	}
	return parseDatasets(raw)
}

func parseDatasets(raw []byte) ([]model.Dataset, error) {
	var file datasetsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, apperrors.NewValidationError("datasets file is not valid YAML").WithCause(err)
	}
	if len(file.Datasets) == 0 {
		return nil, apperrors.NewValidationError("datasets file lists no datasets")
	}

	seen := make(map[string]struct{}, len(file.Datasets))
	out := make([]model.Dataset, 0, len(file.Datasets))
	for _, entry := range file.Datasets {
		ds := entry.Dataset
		ds.Frequency = time.Duration(entry.FrequencyMinutes) * time.Minute
		if err := ds.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[ds.Partition]; dup {
			return nil, apperrors.NewValidationError(fmt.Sprintf("partition %s is listed twice", ds.Partition))
		}
		seen[ds.Partition] = struct{}{}
		out = append(out, ds)
	}
	return out, nil
}
