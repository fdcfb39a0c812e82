package userstests

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
)

const fakeAPIBasePath = "/api"

var fakeLastNames = []string{
	"Bluth", "Weaver", "Wong", "Holt", "Morris", "Ramos",
	"Lawson", "Ferguson", "Funke", "Fields", "Edwards", "Howell",
}

// fakeUsersAPI imitates the public users API closely enough for the suite to pass against it,
// with knobs for making individual checks fail.
type fakeUsersAPI struct {
	perPage         int
	totalOverride   int
	lookupIDOffset  int
	createStatus    int
	createdID       interface{}
	createdAt       string
	rawCreateBody   string
	delay           time.Duration
	receivedCreates []map[string]interface{}
	receivedQueries []url.Values
	deleted         []string
	lock            sync.Mutex
}

func newFakeUsersAPI() *fakeUsersAPI {
	return &fakeUsersAPI{
		perPage:      6,
		createStatus: http.StatusCreated,
		createdID:    "583",
		createdAt:    "2024-05-01T10:20:30.123Z",
	}
}

func fakeUser(id int) map[string]interface{} {
	return map[string]interface{}{
		"id":         id,
		"email":      fmt.Sprintf("user%d@reqres.in", id),
		"first_name": fmt.Sprintf("First%d", id),
		"last_name":  fakeLastNames[id-1],
		"avatar":     fmt.Sprintf("https://reqres.in/img/faces/%d-image.jpg", id),
	}
}

func (f *fakeUsersAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	usersPath := fakeAPIBasePath + "/users"
	switch {
	case r.URL.Path == usersPath && r.Method == http.MethodGet:
		f.lock.Lock()
		f.receivedQueries = append(f.receivedQueries, r.URL.Query())
		f.lock.Unlock()
		if id := r.URL.Query().Get("id"); id != "" {
			f.serveUser(w, r, id)
			return
		}
		f.servePage(w, r)
	case r.URL.Path == usersPath && r.Method == http.MethodPost:
		f.serveCreate(w, r)
	case strings.HasPrefix(r.URL.Path, usersPath+"/") && r.Method == http.MethodDelete:
		f.lock.Lock()
		f.deleted = append(f.deleted, strings.TrimPrefix(r.URL.Path, usersPath+"/"))
		f.lock.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeUsersAPI) servePage(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	total := len(fakeLastNames)
	data := []interface{}{}
	for id := (page-1)*f.perPage + 1; id <= page*f.perPage && id <= total; id++ {
		data = append(data, fakeUser(id))
	}
	if f.totalOverride != 0 {
		total = f.totalOverride
	}
	httphelpers.HandlerWithJSONResponse(map[string]interface{}{
		"page":        page,
		"per_page":    f.perPage,
		"total":       total,
		"total_pages": (total + f.perPage - 1) / f.perPage,
		"data":        data,
	}, nil).ServeHTTP(w, r)
}

func (f *fakeUsersAPI) serveUser(w http.ResponseWriter, r *http.Request, idParam string) {
	id, err := strconv.Atoi(idParam)
	if err != nil || id < 1 || id > len(fakeLastNames) {
		httphelpers.HandlerWithJSONResponse(map[string]interface{}{}, nil).ServeHTTP(w, r)
		return
	}
	user := fakeUser(id)
	user["id"] = id + f.lookupIDOffset
	httphelpers.HandlerWithJSONResponse(map[string]interface{}{"data": user}, nil).ServeHTTP(w, r)
}

func (f *fakeUsersAPI) serveCreate(w http.ResponseWriter, r *http.Request) {
	var input map[string]interface{}
	data, _ := ioutil.ReadAll(r.Body)
	_ = json.Unmarshal(data, &input)
	f.lock.Lock()
	f.receivedCreates = append(f.receivedCreates, input)
	f.lock.Unlock()

	headers := http.Header{"Content-Type": []string{"application/json"}}
	if f.rawCreateBody != "" {
		httphelpers.HandlerWithResponse(f.createStatus, headers, []byte(f.rawCreateBody)).ServeHTTP(w, r)
		return
	}
	output := map[string]interface{}{}
	for k, v := range input {
		output[k] = v
	}
	output["id"] = f.createdID
	output["createdAt"] = f.createdAt
	body, _ := json.Marshal(output)
	httphelpers.HandlerWithResponse(f.createStatus, headers, body).ServeHTTP(w, r)
}

func (f *fakeUsersAPI) createBodies() []map[string]interface{} {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]map[string]interface{}(nil), f.receivedCreates...)
}

func (f *fakeUsersAPI) queries() []url.Values {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]url.Values(nil), f.receivedQueries...)
}

func (f *fakeUsersAPI) deletedIDs() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]string(nil), f.deleted...)
}
