package servicedef

import (
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Scenario names, used both as keys in the test data and schema documents and as test IDs.
const (
	FetchUsersOnPageName = "fetchUsersOnPage"
	FetchUserByIDName    = "fetchUserByID"
	CreateUserName       = "createUser"
)

// AllScenarioNames lists every scenario the suite knows about, in run order.
var AllScenarioNames = []string{FetchUsersOnPageName, FetchUserByIDName, CreateUserName}

// TestData is the whole test data document.
type TestData struct {
	FetchUsersOnPage FetchUsersOnPageParams `json:"fetchUsersOnPage"`
	FetchUserByID    FetchUserByIDParams    `json:"fetchUserByID"`
	CreateUser       CreateUserParams       `json:"createUser"`
}

// CommonParams are the properties shared by every scenario.
type CommonParams struct {
	Endpoint          string              `json:"endpoint"`
	MaxResponseTimeMS int                 `json:"maxResponseTime"`
	ExpectedStatus    ldvalue.OptionalInt `json:"expectedStatus,omitempty"`
}

// MaxResponseTime is the latency budget of the scenario. The response must arrive in strictly
// less time than this.
func (p CommonParams) MaxResponseTime() time.Duration {
	return time.Duration(p.MaxResponseTimeMS) * time.Millisecond
}

// StatusOrElse returns the configured expected status, or defaultStatus if there is none.
func (p CommonParams) StatusOrElse(defaultStatus int) int {
	return p.ExpectedStatus.OrElse(defaultStatus)
}

type FetchUsersOnPageParams struct {
	CommonParams
	QueryParams    PageQueryParams    `json:"queryParams"`
	ValidationData PageValidationData `json:"validationData"`
}

// PageQueryParams is the query of the page listing. Page and PerPage are typed because the
// scenario uses them; any other keys are sent unchanged.
type PageQueryParams struct {
	Page    ldvalue.OptionalInt
	PerPage ldvalue.OptionalInt
	Extra   map[string]ldvalue.Value
}

func (q PageQueryParams) Values() url.Values {
	v := queryValues(q.Extra)
	if q.Page.IsDefined() {
		v.Set("page", strconv.Itoa(q.Page.IntValue()))
	}
	if q.PerPage.IsDefined() {
		v.Set("per_page", strconv.Itoa(q.PerPage.IntValue()))
	}
	return v
}

func (q *PageQueryParams) UnmarshalJSON(data []byte) error {
	fields, err := decodeFields(data)
	if err != nil {
		return err
	}
	if q.Page, err = takeOptionalInt(fields, "page"); err != nil {
		return err
	}
	if q.PerPage, err = takeOptionalInt(fields, "per_page"); err != nil {
		return err
	}
	q.Extra = nonEmpty(fields)
	return nil
}

func (q PageQueryParams) MarshalJSON() ([]byte, error) {
	out := copyFields(q.Extra)
	if q.Page.IsDefined() {
		out["page"] = q.Page.AsValue()
	}
	if q.PerPage.IsDefined() {
		out["per_page"] = q.PerPage.AsValue()
	}
	return json.Marshal(out)
}

type PageValidationData struct {
	Total int                  `json:"total"`
	Users []ExpectedUserOnPage `json:"users"`
}

// ExpectedUserOnPage says which last name should appear at a position of the returned page.
type ExpectedUserOnPage struct {
	Index    int    `json:"index"`
	LastName string `json:"last_name"`
}

type FetchUserByIDParams struct {
	CommonParams
	QueryParams UserIDQueryParams `json:"queryParams"`
}

type UserIDQueryParams struct {
	ID    int
	Extra map[string]ldvalue.Value
}

func (q UserIDQueryParams) Values() url.Values {
	v := queryValues(q.Extra)
	v.Set("id", strconv.Itoa(q.ID))
	return v
}

func (q *UserIDQueryParams) UnmarshalJSON(data []byte) error {
	fields, err := decodeFields(data)
	if err != nil {
		return err
	}
	id, err := takeOptionalInt(fields, "id")
	if err != nil {
		return err
	}
	q.ID = id.IntValue()
	q.Extra = nonEmpty(fields)
	return nil
}

func (q UserIDQueryParams) MarshalJSON() ([]byte, error) {
	out := copyFields(q.Extra)
	out["id"] = ldvalue.Int(q.ID)
	return json.Marshal(out)
}

type CreateUserParams struct {
	CommonParams
	Body NewUser `json:"body"`

	// Cleanup asks for the created user to be deleted again when the scenario ends.
	Cleanup bool `json:"cleanup,omitempty"`
}

// NewUser is the body of the create request. The API echoes the name and email back, so those
// are typed; other properties are sent as given.
type NewUser struct {
	Name  string
	Email string
	Extra map[string]ldvalue.Value
}

func (u *NewUser) UnmarshalJSON(data []byte) error {
	fields, err := decodeFields(data)
	if err != nil {
		return err
	}
	if u.Name, err = takeString(fields, "name"); err != nil {
		return err
	}
	if u.Email, err = takeString(fields, "email"); err != nil {
		return err
	}
	u.Extra = nonEmpty(fields)
	return nil
}

func (u NewUser) MarshalJSON() ([]byte, error) {
	out := copyFields(u.Extra)
	out["name"] = ldvalue.String(u.Name)
	out["email"] = ldvalue.String(u.Email)
	return json.Marshal(out)
}
