// Package agvdtest provides an in-memory AGVD lookalike: the auth endpoints
// plus the GraphQL variant search, backed by a fixture table. The test suite
// runs against it via httptest, and cmd/agvdmock serves it over HTTP for
// offline development.
package agvdtest

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"gopkg.in/guregu/null.v3"

	"github.com/h3abionet/agvd"
)

// Credentials accepted by a Server fresh out of New.
const (
	DefaultToken    = "agvdtest-token"
	DefaultUser     = "demo"
	DefaultPassword = "h3africa"
)

// Fixture is one variant the fake service knows about.
type Fixture struct {
	VariantID  string
	AfricanMAF null.Float
	Clusters   []agvd.ClusterMAF
}

// Server is a fake AGVD deployment. All methods are safe for concurrent
// use.
type Server struct {
	mu       sync.Mutex
	fixtures map[string]Fixture
	tokens   map[string]bool
	logins   map[string]string
	queries  int
	failNext int
}

// New returns a server that accepts DefaultToken and the
// DefaultUser/DefaultPassword login, preloaded with a small fixture set.
// The preloaded rs116600158 carries an African MAF of 0.20.
func New() *Server {
	s := &Server{
		fixtures: make(map[string]Fixture),
		tokens:   map[string]bool{DefaultToken: true},
		logins:   map[string]string{DefaultUser: DefaultPassword},
	}

	s.Add(Fixture{
		VariantID:  "rs116600158",
		AfricanMAF: null.FloatFrom(0.20),
		Clusters: []agvd.ClusterMAF{
			{Name: "WAFR", MAF: null.FloatFrom(0.22)},
			{Name: "EAFR", MAF: null.FloatFrom(0.18)},
			{Name: "SAFR", MAF: null.FloatFrom(0.21)},
		},
	})
	s.Add(Fixture{
		VariantID:  "22_51229805_G_A",
		AfricanMAF: null.FloatFrom(0.005),
		Clusters: []agvd.ClusterMAF{
			{Name: "WAFR", MAF: null.FloatFrom(0.004)},
			{Name: "EAFR", MAF: null.FloatFrom(0.006)},
		},
	})
	s.Add(Fixture{
		VariantID:  "rs5343129",
		AfricanMAF: null.FloatFrom(0.31),
	})

	return s
}

// Add registers a fixture, replacing any earlier one with the same ID.
func (s *Server) Add(f Fixture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixtures[strings.ToLower(f.VariantID)] = f
}

// AllowToken registers an extra accepted API token.
func (s *Server) AllowToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = true
}

// AllowLogin registers an extra accepted user/password pair. The token
// issued for it is "token-for-" + userID.
func (s *Server) AllowLogin(userID, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logins[userID] = password
}

// FailNext makes the next n GraphQL requests answer 503, for exercising
// retry behavior. The requests still count toward QueryCount.
func (s *Server) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
}

// QueryCount reports how many GraphQL requests have been received,
// including ones that were failed deliberately.
func (s *Server) QueryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries
}

// Handler returns the HTTP surface: POST /auth/login, POST /auth/verify,
// and POST / for GraphQL.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	POST := router.Methods("POST").Subrouter()

	POST.HandleFunc("/auth/login", s.login)
	POST.HandleFunc("/auth/verify", s.verify)
	POST.HandleFunc("/", s.graphql)

	return router
}

func jsonError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(struct {
		Message string `json:"message"`
	}{message})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID   string `json:"userId"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	password, known := s.logins[in.UserID]
	s.mu.Unlock()

	if !known || password != in.Password {
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token := "token-for-" + in.UserID
	s.AllowToken(token)

	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	ok := s.tokens[in.Token]
	s.mu.Unlock()

	if !ok {
		jsonError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	json.NewEncoder(w).Encode(map[string]bool{"valid": true})
}

func (s *Server) graphql(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.queries++
	mustFail := s.failNext > 0
	if mustFail {
		s.failNext--
	}
	s.mu.Unlock()

	if mustFail {
		jsonError(w, http.StatusServiceUnavailable, "deliberate failure")
		return
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	authorized := s.tokens[token]
	s.mu.Unlock()
	if !authorized {
		jsonError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var in struct {
		Query     string                 `json:"query"`
		Variables map[string]interface{} `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	input, ok := in.Variables["input"].(map[string]interface{})
	if !ok {
		s.graphqlError(w, "variables.input missing")
		return
	}

	threshold, _ := input["threshold"].(float64)

	rawIDs, ok := input["rsID"].([]interface{})
	if !ok {
		rawIDs, ok = input["variantID"].([]interface{})
	}
	if !ok {
		s.graphqlError(w, "input carries neither rsID nor variantID")
		return
	}

	var clusterFilter []string
	if rawClusters, ok := input["clusters"].([]interface{}); ok {
		for _, c := range rawClusters {
			if name, ok := c.(string); ok {
				clusterFilter = append(clusterFilter, name)
			}
		}
	}

	results := make([]agvd.VariantResult, 0, len(rawIDs))
	for _, raw := range rawIDs {
		queried, ok := raw.(string)
		if !ok {
			continue
		}

		s.mu.Lock()
		fixture, found := s.fixtures[strings.ToLower(queried)]
		s.mu.Unlock()
		if !found {
			continue
		}

		results = append(results, agvd.VariantResult{
			VariantID:     queried,
			AfricanMAF:    fixture.AfricanMAF,
			Status:        null.StringFrom(agvd.Cutoff(fixture.AfricanMAF, threshold, agvd.DirectionBelow)),
			UsedThreshold: null.FloatFrom(threshold),
			Clusters:      filterClusters(fixture.Clusters, clusterFilter),
		})
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": map[string]interface{}{"cliVariantSearch": results},
	})
}

func (s *Server) graphqlError(w http.ResponseWriter, message string) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"errors": []map[string]string{{"message": message}},
	})
}

func filterClusters(clusters []agvd.ClusterMAF, filter []string) []agvd.ClusterMAF {
	if len(filter) == 0 {
		return clusters
	}

	keep := make([]agvd.ClusterMAF, 0, len(clusters))
	for _, c := range clusters {
		for _, name := range filter {
			if strings.EqualFold(c.Name, name) {
				keep = append(keep, c)
				break
			}
		}
	}

	return keep
}
