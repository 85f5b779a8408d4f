// SPDX-License-Identifier: MIT

package schedulesdirect

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockServer provides a configurable SD-JSON mock server for testing.
type MockServer struct {
	*httptest.Server
	mu sync.RWMutex

	username     string
	passwordHash string
	token        string

	lineups   []string
	details   map[string]json.RawMessage
	schedules map[string][]Airing
	programs  map[string]Program

	failures map[string]int // Number of failures before success per endpoint
	requests map[string]int
	lastUA   string
}

// NewMockServer creates a new SD-JSON mock server accepting the given credentials.
func NewMockServer(username, password string) *MockServer {
	mock := &MockServer{
		username:     username,
		passwordHash: HashPassword(password),
		token:        "mock-token-0001",
		details:      make(map[string]json.RawMessage),
		schedules:    make(map[string][]Airing),
		programs:     make(map[string]Program),
		failures:     make(map[string]int),
		requests:     make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", mock.handleToken)
	mux.HandleFunc("GET /status", mock.authed("status", mock.handleStatus))
	mux.HandleFunc("GET /lineups", mock.authed("lineups", mock.handleLineups))
	mux.HandleFunc("GET /lineups/{id}", mock.authed("lineup", mock.handleLineupDetail))
	mux.HandleFunc("POST /schedules", mock.authed("schedules", mock.handleSchedules))
	mux.HandleFunc("POST /programs", mock.authed("programs", mock.handlePrograms))

	mock.Server = httptest.NewServer(mux)
	return mock
}

// AddLineup registers a lineup with its detail body.
func (m *MockServer) AddLineup(id string, detail LineupDetail) {
	raw, _ := json.Marshal(detail)
	m.AddLineupRaw(id, raw)
}

// AddLineupRaw registers a lineup whose detail body is served verbatim.
func (m *MockServer) AddLineupRaw(id string, body json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lineups = append(m.lineups, id)
	m.details[id] = body
}

// AddAirings appends airings to a station's schedule.
func (m *MockServer) AddAirings(stationID string, airings ...Airing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedules[stationID] = append(m.schedules[stationID], airings...)
}

// AddPrograms registers program metadata.
func (m *MockServer) AddPrograms(programs ...Program) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range programs {
		m.programs[p.ProgramID] = p
	}
}

// SetFailures sets the number of failures (HTTP 500) before success for an
// endpoint: token, status, lineups, lineup, schedules or programs.
func (m *MockServer) SetFailures(endpoint string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[endpoint] = count
}

// Requests returns how many requests an endpoint has received.
func (m *MockServer) Requests(endpoint string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[endpoint]
}

// LastUserAgent returns the User-Agent header of the last request.
func (m *MockServer) LastUserAgent() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastUA
}

// Token returns the token handed out by /token.
func (m *MockServer) Token() string {
	return m.token
}

func (m *MockServer) count(endpoint string, r *http.Request) (fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[endpoint]++
	m.lastUA = r.Header.Get("User-Agent")
	if m.failures[endpoint] > 0 {
		m.failures[endpoint]--
		return true
	}
	return false
}

func (m *MockServer) authed(endpoint string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.count(endpoint, r) {
			writeJSON(w, http.StatusInternalServerError, apiErrorBody{Code: 5000, Message: "internal error"})
			return
		}
		if r.Header.Get("token") != m.token {
			writeJSON(w, http.StatusForbidden, apiErrorBody{Code: 4006, Response: "TOKEN_EXPIRED", Message: "Token has expired."})
			return
		}
		h(w, r)
	}
}

func (m *MockServer) handleToken(w http.ResponseWriter, r *http.Request) {
	if m.count("token", r) {
		writeJSON(w, http.StatusInternalServerError, apiErrorBody{Code: 5000, Message: "internal error"})
		return
	}
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, apiErrorBody{Code: 1001, Message: "Unable to decode JSON"})
		return
	}
	if creds.Username != m.username || !strings.EqualFold(creds.Password, m.passwordHash) {
		writeJSON(w, http.StatusBadRequest, apiErrorBody{Code: 4003, Response: "INVALID_USER", Message: "Invalid user."})
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Code: 0, Message: "OK", Token: m.token})
}

func (m *MockServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	var st Status
	st.Account.Expires = "2027-01-01T00:00:00Z"
	st.Account.MaxLineups = 4
	writeJSON(w, http.StatusOK, st)
}

func (m *MockServer) handleLineups(w http.ResponseWriter, _ *http.Request) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	resp := lineupsResponse{Lineups: make([]Lineup, 0, len(m.lineups))}
	for _, id := range m.lineups {
		resp.Lineups = append(resp.Lineups, Lineup{Lineup: id, URI: "/20141201/lineups/" + id})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (m *MockServer) handleLineupDetail(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	body, ok := m.details[r.PathValue("id")]
	m.mu.RUnlock()
	if !ok {
		writeJSON(w, http.StatusBadRequest, apiErrorBody{Code: 2101, Response: "LINEUP_NOT_FOUND", Message: "Lineup not in account."})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// handleSchedules answers with one block per station per requested date,
// holding the airings whose airDateTime starts with that date.
func (m *MockServer) handleSchedules(w http.ResponseWriter, r *http.Request) {
	var reqs []ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeJSON(w, http.StatusBadRequest, apiErrorBody{Code: 1001, Message: "Unable to decode JSON"})
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]StationSchedule, 0, len(reqs))
	for _, req := range reqs {
		for _, date := range req.Date {
			block := StationSchedule{StationID: req.StationID, Programs: []Airing{}}
			block.Metadata.StartDate = date
			for _, a := range m.schedules[req.StationID] {
				if strings.HasPrefix(a.AirDateTime, date) {
					block.Programs = append(block.Programs, a)
				}
			}
			out = append(out, block)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (m *MockServer) handlePrograms(w http.ResponseWriter, r *http.Request) {
	var ids []string
	if err := json.NewDecoder(r.Body).Decode(&ids); err != nil {
		writeJSON(w, http.StatusBadRequest, apiErrorBody{Code: 1001, Message: "Unable to decode JSON"})
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Program, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.programs[id]; ok {
			out = append(out, p)
			continue
		}
		out = append(out, Program{ProgramID: id, Code: 6001, Message: "Program ID queued for retrieval."})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
