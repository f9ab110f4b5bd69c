package apitest

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/gorilla/mux"

	"github.com/lmops/lmstate/pkg/config"
	"github.com/lmops/lmstate/pkg/lmapi"
)

// Server is an in-memory fake LogicMonitor portal backed by an
// httptest.Server. It implements the endpoint surface the engine uses,
// verifies the LMv1 signature of every request, and records mutating
// calls so tests can assert on side effects.
type Server struct {
	mu sync.Mutex

	srv       *httptest.Server
	accessID  string
	accessKey string

	nextID          int
	groups          map[int]*lmapi.DeviceGroup
	devices         map[int]*lmapi.Device
	collectorGroups []lmapi.CollectorGroup
	collectors      []lmapi.Collector

	// V2Envelope wraps list GET responses in the legacy
	// {"status":200,"data":...} envelope.
	V2Envelope bool

	failStatus int
	failCount  int

	mutations []string
}

const (
	testAccessID  = "test-access-id"
	testAccessKey = "test-access-key"
)

// NewServer starts a fake portal. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		accessID:  testAccessID,
		accessKey: testAccessKey,
		nextID:    2, // 1 is the root group
		groups:    make(map[int]*lmapi.DeviceGroup),
		devices:   make(map[int]*lmapi.Device),
	}

	r := mux.NewRouter()
	r.Use(s.failureMiddleware)
	r.HandleFunc("/device/groups", s.listGroups).Methods(http.MethodGet)
	r.HandleFunc("/device/groups", s.createGroup).Methods(http.MethodPost)
	r.HandleFunc("/device/groups/{id:[0-9]+}", s.updateGroup).Methods(http.MethodPut)
	r.HandleFunc("/device/groups/{id:[0-9]+}", s.deleteGroup).Methods(http.MethodDelete)
	r.HandleFunc("/device/devices", s.listDevices).Methods(http.MethodGet)
	r.HandleFunc("/device/devices", s.createDevice).Methods(http.MethodPost)
	r.HandleFunc("/device/devices/{id:[0-9]+}", s.updateDevice).Methods(http.MethodPut)
	r.HandleFunc("/device/devices/{id:[0-9]+}", s.deleteDevice).Methods(http.MethodDelete)
	r.HandleFunc("/setting/collector/groups", s.listCollectorGroups).Methods(http.MethodGet)
	r.HandleFunc("/setting/collectors", s.listCollectors).Methods(http.MethodGet)

	s.srv = httptest.NewServer(r)
	return s
}

// Close shuts down the underlying test server.
func (s *Server) Close() {
	s.srv.Close()
}

// Account returns a client configuration pointing at this fake portal.
func (s *Server) Account() *config.Account {
	return &config.Account{
		Company:     "apitest",
		AccessID:    s.accessID,
		AccessKey:   s.accessKey,
		BaseURL:     s.srv.URL,
		BackoffBase: config.Duration(1), // effectively no backoff in tests
	}
}

// URL returns the fake portal's base URL.
func (s *Server) URL() string {
	return s.srv.URL
}

// FailNext makes the next n requests fail with the given HTTP status
// before any routing or signature checking happens.
func (s *Server) FailNext(status, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
	s.failCount = n
}

// Mutations returns the ordered "METHOD /path" log of every create,
// update and delete call received so far.
func (s *Server) Mutations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.mutations))
	copy(out, s.mutations)
	return out
}

// AddGroup seeds a group and returns it. A parentID of 0 means root.
func (s *Server) AddGroup(parentID int, name string) *lmapi.DeviceGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	if parentID == 0 {
		parentID = lmapi.RootGroupID
	}
	g := &lmapi.DeviceGroup{
		ID:       s.allocID(),
		Name:     name,
		ParentID: parentID,
	}
	s.groups[g.ID] = g
	return g
}

// AddGroupWithID seeds a group with an explicit id, for tests that need
// to control id ordering (duplicate tie-breaks).
func (s *Server) AddGroupWithID(id, parentID int, name string) *lmapi.DeviceGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	if parentID == 0 {
		parentID = lmapi.RootGroupID
	}
	g := &lmapi.DeviceGroup{ID: id, Name: name, ParentID: parentID}
	s.groups[id] = g
	if id >= s.nextID {
		s.nextID = id + 1
	}
	return g
}

// AddDevice seeds a device placed in the given host group.
func (s *Server) AddDevice(groupID int, name string) *lmapi.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := &lmapi.Device{
		ID:           s.allocID(),
		Name:         name,
		DisplayName:  name,
		HostGroupIds: strconv.Itoa(groupID),
	}
	s.devices[d.ID] = d
	return d
}

// AddCollectorGroup seeds a collector group.
func (s *Server) AddCollectorGroup(name string) lmapi.CollectorGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	cg := lmapi.CollectorGroup{ID: s.allocID(), Name: name}
	s.collectorGroups = append(s.collectorGroups, cg)
	return cg
}

// AddCollector seeds a collector addressed by description.
func (s *Server) AddCollector(description string) lmapi.Collector {
	s.mu.Lock()
	defer s.mu.Unlock()
	col := lmapi.Collector{ID: s.allocID(), Description: description}
	s.collectors = append(s.collectors, col)
	return col
}

// Group returns the stored group by id, or nil.
func (s *Server) Group(id int) *lmapi.DeviceGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groups[id]
}

// Device returns the stored device by id, or nil.
func (s *Server) Device(id int) *lmapi.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.devices[id]
}

// GroupCount returns the number of stored groups.
func (s *Server) GroupCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.groups)
}

// DeviceCount returns the number of stored devices.
func (s *Server) DeviceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.devices)
}

// GroupByPath walks the stored tree and returns the group at the given
// root-relative path, or nil.
func (s *Server) GroupByPath(segments ...string) *lmapi.DeviceGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent := lmapi.RootGroupID
	var found *lmapi.DeviceGroup
	for _, seg := range segments {
		found = nil
		for _, g := range s.groups {
			if g.ParentID == parent && g.Name == seg {
				found = g
				break
			}
		}
		if found == nil {
			return nil
		}
		parent = found.ID
	}
	return found
}

func (s *Server) allocID() int {
	id := s.nextID
	s.nextID++
	return id
}
