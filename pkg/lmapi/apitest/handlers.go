package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/lmops/lmstate/pkg/lmapi"
)

// failureMiddleware implements FailNext injection, LMv1 signature
// verification and the mutation log. Injected failures fire before
// anything else so retry tests see them regardless of routing.
func (s *Server) failureMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		if s.failCount > 0 {
			s.failCount--
			status := s.failStatus
			s.mu.Unlock()
			writeError(w, status, 0, "injected failure")
			return
		}
		s.mu.Unlock()

		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		if !s.verifySignature(r, body) {
			writeError(w, http.StatusUnauthorized, 1401, "Authentication failed")
			return
		}

		if r.Method != http.MethodGet {
			s.mu.Lock()
			s.mutations = append(s.mutations, r.Method+" "+r.URL.Path)
			s.mu.Unlock()
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) verifySignature(r *http.Request, body []byte) bool {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "LMv1 ") {
		return false
	}
	parts := strings.Split(strings.TrimPrefix(auth, "LMv1 "), ":")
	if len(parts) != 3 || parts[0] != s.accessID {
		return false
	}
	want := lmapi.Signature(s.accessKey, r.Method, parts[2], string(body), r.URL.Path)
	return parts[1] == want
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status, code int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"errorCode":    code,
		"errorMessage": msg,
	})
}

func (s *Server) writeList(w http.ResponseWriter, items interface{}, total int) {
	payload := map[string]interface{}{"total": total, "items": items}
	if s.V2Envelope {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": 200, "data": payload})
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// parseFilter decodes the portal's "k1:v1,k2:v2" filter grammar.
func parseFilter(r *http.Request) map[string]string {
	out := make(map[string]string)
	for _, clause := range strings.Split(r.URL.Query().Get("filter"), ",") {
		if k, v, ok := strings.Cut(clause, ":"); ok {
			out[k] = v
		}
	}
	return out
}

func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	filter := parseFilter(r)

	s.mu.Lock()
	var items []lmapi.DeviceGroup
	for _, g := range s.groups {
		if v, ok := filter["parentId"]; ok {
			if pid, err := strconv.Atoi(v); err != nil || g.ParentID != pid {
				continue
			}
		}
		if v, ok := filter["name"]; ok && g.Name != v {
			continue
		}
		items = append(items, *g)
	}
	s.mu.Unlock()

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	s.writeList(w, items, len(items))
}

func (s *Server) createGroup(w http.ResponseWriter, r *http.Request) {
	var input lmapi.GroupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, 0, "malformed body")
		return
	}
	if input.Name == "" {
		writeError(w, http.StatusBadRequest, 0, "name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.groups {
		if g.ParentID == input.ParentID && g.Name == input.Name {
			writeError(w, http.StatusConflict, 1409, "a group with the same name already exists")
			return
		}
	}
	g := &lmapi.DeviceGroup{
		ID:                                  s.allocID(),
		Name:                                input.Name,
		ParentID:                            input.ParentID,
		Description:                         input.Description,
		DisableAlerting:                     input.DisableAlerting,
		DefaultCollectorGroupID:             input.DefaultCollectorGroupID,
		DefaultAutoBalancedCollectorGroupID: input.DefaultAutoBalancedCollectorGroupID,
		CustomProperties:                    input.CustomProperties,
	}
	s.groups[g.ID] = g
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) updateGroup(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	var input lmapi.GroupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, 0, "malformed body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		writeError(w, http.StatusNotFound, 1404, "group not found")
		return
	}
	g.Name = input.Name
	g.ParentID = input.ParentID
	g.Description = input.Description
	g.DisableAlerting = input.DisableAlerting
	g.DefaultCollectorGroupID = input.DefaultCollectorGroupID
	g.DefaultAutoBalancedCollectorGroupID = input.DefaultAutoBalancedCollectorGroupID
	g.CustomProperties = input.CustomProperties
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) deleteGroup(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	cascade := r.URL.Query().Get("deleteChildren") == "true"

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[id]; !ok {
		writeError(w, http.StatusNotFound, 1404, "group not found")
		return
	}
	if !cascade {
		for _, g := range s.groups {
			if g.ParentID == id {
				writeError(w, http.StatusBadRequest, 1400, "group has children; pass deleteChildren=true")
				return
			}
		}
	}
	s.deleteSubtree(id)
	writeJSON(w, http.StatusOK, map[string]interface{}{})
}

// deleteSubtree removes a group and all descendants. Caller holds the
// lock.
func (s *Server) deleteSubtree(id int) {
	for _, g := range s.groups {
		if g.ParentID == id {
			s.deleteSubtree(g.ID)
		}
	}
	delete(s.groups, id)
}

func (s *Server) listDevices(w http.ResponseWriter, r *http.Request) {
	filter := parseFilter(r)

	s.mu.Lock()
	var items []lmapi.Device
	for _, d := range s.devices {
		if v, ok := filter["name"]; ok && d.Name != v {
			continue
		}
		items = append(items, *d)
	}
	s.mu.Unlock()

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	s.writeList(w, items, len(items))
}

func (s *Server) createDevice(w http.ResponseWriter, r *http.Request) {
	var input lmapi.DeviceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, 0, "malformed body")
		return
	}
	if input.Name == "" {
		writeError(w, http.StatusBadRequest, 0, "name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.devices {
		if d.Name == input.Name {
			writeError(w, http.StatusConflict, 1409, "a device with the same name already exists")
			return
		}
	}
	d := deviceFromInput(s.allocID(), input)
	s.devices[d.ID] = d
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) updateDevice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	var input lmapi.DeviceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, 0, "malformed body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.devices[id]; !ok {
		writeError(w, http.StatusNotFound, 1404, "device not found")
		return
	}
	d := deviceFromInput(id, input)
	s.devices[id] = d
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) deleteDevice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.devices[id]; !ok {
		writeError(w, http.StatusNotFound, 1404, "device not found")
		return
	}
	delete(s.devices, id)
	writeJSON(w, http.StatusOK, map[string]interface{}{})
}

func (s *Server) listCollectorGroups(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := make([]lmapi.CollectorGroup, len(s.collectorGroups))
	copy(items, s.collectorGroups)
	s.mu.Unlock()
	s.writeList(w, items, len(items))
}

func (s *Server) listCollectors(w http.ResponseWriter, r *http.Request) {
	filter := parseFilter(r)

	s.mu.Lock()
	var items []lmapi.Collector
	for _, c := range s.collectors {
		if v, ok := filter["description"]; ok && c.Description != v {
			continue
		}
		items = append(items, c)
	}
	s.mu.Unlock()
	s.writeList(w, items, len(items))
}

// deviceFromInput mirrors how the portal reflects a write back: the
// preferred collector group follows the auto-balanced assignment.
func deviceFromInput(id int, input lmapi.DeviceInput) *lmapi.Device {
	return &lmapi.Device{
		ID:                           id,
		Name:                         input.Name,
		DisplayName:                  input.DisplayName,
		Description:                  input.Description,
		HostGroupIds:                 input.HostGroupIds,
		DisableAlerting:              input.DisableAlerting,
		PreferredCollectorGroupID:    input.AutoBalancedCollectorGroupID,
		AutoBalancedCollectorGroupID: input.AutoBalancedCollectorGroupID,
		EnableNetflow:                input.EnableNetflow,
		NetflowCollectorID:           input.NetflowCollectorID,
		CustomProperties:             input.CustomProperties,
	}
}
