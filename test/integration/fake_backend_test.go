//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// fakeRecord mirrors a json-server record: numeric id, absolute vote count.
type fakeRecord struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
	Votes int    `json:"votes"`
}

// fakeBackend is an in-memory characters store speaking the
// json-server dialect: GET /characters, PATCH /characters/{id} and
// POST /characters.
type fakeBackend struct {
	*httptest.Server

	mu      sync.Mutex
	records []fakeRecord
	nextID  int

	// failWith, when non-zero, is returned by every request.
	failWith atomic.Int32

	calls   atomic.Int32
	patches atomic.Int32
	posts   atomic.Int32

	lastRequestID atomic.Value
}

func newFakeBackend(seed ...fakeRecord) *fakeBackend {
	fb := &fakeBackend{nextID: 1}
	for _, r := range seed {
		fb.records = append(fb.records, r)
		if r.ID >= fb.nextID {
			fb.nextID = r.ID + 1
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /characters", fb.list)
	mux.HandleFunc("POST /characters", fb.create)
	mux.HandleFunc("PATCH /characters/{id}", fb.patch)

	fb.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.calls.Add(1)
		fb.lastRequestID.Store(r.Header.Get("X-Request-ID"))

		if status := fb.failWith.Load(); status != 0 {
			w.WriteHeader(int(status))
			return
		}

		mux.ServeHTTP(w, r)
	}))

	return fb
}

func defaultRecords() []fakeRecord {
	return []fakeRecord{
		{ID: 1, Name: "Mr. Cute", Image: "https://example.com/cute.gif", Votes: 0},
		{ID: 2, Name: "Mx. Monkey", Image: "https://example.com/monkey.gif", Votes: 0},
		{ID: 3, Name: "Lady Bird", Image: "https://example.com/bird.gif", Votes: 0},
	}
}

func (fb *fakeBackend) fail(status int) { fb.failWith.Store(int32(status)) }

func (fb *fakeBackend) restore() { fb.failWith.Store(0) }

// record returns the stored record with the given name.
func (fb *fakeBackend) record(name string) (fakeRecord, bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	for _, r := range fb.records {
		if r.Name == name {
			return r, true
		}
	}

	return fakeRecord{}, false
}

func (fb *fakeBackend) list(w http.ResponseWriter, _ *http.Request) {
	fb.mu.Lock()
	out := make([]fakeRecord, len(fb.records))
	copy(out, fb.records)
	fb.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (fb *fakeBackend) create(w http.ResponseWriter, r *http.Request) {
	fb.posts.Add(1)

	var rec fakeRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	fb.mu.Lock()
	rec.ID = fb.nextID
	fb.nextID++
	fb.records = append(fb.records, rec)
	fb.mu.Unlock()

	writeJSON(w, http.StatusCreated, rec)
}

func (fb *fakeBackend) patch(w http.ResponseWriter, r *http.Request) {
	fb.patches.Add(1)

	id, err := strconv.Atoi(strings.TrimSpace(r.PathValue("id")))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var body struct {
		Votes int `json:"votes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()

	for i := range fb.records {
		if fb.records[i].ID == id {
			fb.records[i].Votes = body.Votes
			writeJSON(w, http.StatusOK, fb.records[i])
			return
		}
	}

	writeJSON(w, http.StatusNotFound, map[string]string{})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
