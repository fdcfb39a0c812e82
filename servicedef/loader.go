package servicedef

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LoadTestData reads and checks the test data document at path. The document may be JSON, or
// YAML if the file name ends in .yaml or .yml.
func LoadTestData(path string) (TestData, error) {
	var data TestData
	if err := ReadDocument(path, &data); err != nil {
		return TestData{}, err
	}
	if err := data.Validate(); err != nil {
		return TestData{}, errors.Wrapf(err, "invalid test data in %s", path)
	}
	return data, nil
}

// ReadDocument decodes a JSON or YAML file into out using the target's JSON field mapping.
// YAML is converted to JSON first, so the same struct tags serve both formats. Properties that
// out has no field for are an error, so a misspelled key is not silently ignored.
func ReadDocument(path string, out interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "cannot read document")
	}
	if err := DecodeDocument(filepath.Ext(path), raw, out); err != nil {
		return errors.Wrapf(err, "cannot parse %s", path)
	}
	return nil
}

// DecodeDocument is ReadDocument for data already in memory. ext selects the format.
func DecodeDocument(ext string, raw []byte, out interface{}) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var generic interface{}
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return errors.Wrap(err, "malformed YAML")
		}
		converted, err := json.Marshal(generic)
		if err != nil {
			return errors.Wrap(err, "YAML document cannot be represented as JSON")
		}
		raw = converted
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return errors.Wrap(err, "malformed JSON")
	}
	if dec.More() {
		return errors.New("malformed JSON: unexpected data after the document")
	}
	return nil
}

// Validate checks that every scenario has the properties the test suite needs to run it.
func (d TestData) Validate() error {
	checks := []struct {
		name   string
		common CommonParams
	}{
		{FetchUsersOnPageName, d.FetchUsersOnPage.CommonParams},
		{FetchUserByIDName, d.FetchUserByID.CommonParams},
		{CreateUserName, d.CreateUser.CommonParams},
	}
	for _, c := range checks {
		if c.common.Endpoint == "" {
			return errors.Errorf("%s: endpoint is required", c.name)
		}
		if c.common.MaxResponseTimeMS <= 0 {
			return errors.Errorf("%s: maxResponseTime must be a positive number of milliseconds", c.name)
		}
	}
	if page := d.FetchUsersOnPage.QueryParams.Page; !page.IsDefined() || page.IntValue() < 1 {
		return errors.Errorf("%s: queryParams.page must be a page number starting from 1", FetchUsersOnPageName)
	}
	if d.FetchUserByID.QueryParams.ID < 1 {
		return errors.Errorf("%s: queryParams.id must be a positive user ID", FetchUserByIDName)
	}
	for i, u := range d.FetchUsersOnPage.ValidationData.Users {
		if u.Index < 0 {
			return errors.Errorf("%s: validationData.users[%d] has a negative index", FetchUsersOnPageName, i)
		}
	}
	return nil
}
