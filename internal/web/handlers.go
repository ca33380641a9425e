package web

import (
	"encoding/json"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/imacodr/rojo/internal/version"
	"github.com/imacodr/rojo/internal/vfs"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type infoResponse struct {
	ServerVersion   string   `json:"serverVersion"`
	ProtocolVersion int      `json:"protocolVersion"`
	ServerID        string   `json:"serverId"`
	ProjectName     string   `json:"projectName"`
	Partitions      []string `json:"partitions"`
	CurrentTime     float64  `json:"currentTime"`
}

type readAllResponse struct {
	ServerID    string              `json:"serverId"`
	CurrentTime float64             `json:"currentTime"`
	Items       map[string]vfs.Item `json:"items"`
}

type changesResponse struct {
	ServerID    string       `json:"serverId"`
	CurrentTime float64      `json:"currentTime"`
	Changes     []vfs.Change `json:"changes"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	table := s.session.Partitions()
	partitions := make([]string, 0, len(table))
	for name := range table {
		partitions = append(partitions, name)
	}
	sort.Strings(partitions)

	writeJSON(w, http.StatusOK, &infoResponse{
		ServerVersion:   version.Server,
		ProtocolVersion: version.Protocol,
		ServerID:        s.session.ID(),
		ProjectName:     s.session.Project().Name,
		Partitions:      partitions,
		CurrentTime:     s.session.Now(),
	})
}

func (s *Server) handleRead(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	route, err := parseRoute(ps.ByName("route"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	item, err := s.session.ReadItem(route)
	if err != nil {
		writeError(w, readStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleReadAll(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, &readAllResponse{
		ServerID:    s.session.ID(),
		CurrentTime: s.session.Now(),
		Items:       s.session.ReadAll(),
	})
}

func (s *Server) handleChanges(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	raw := ps.ByName("time")
	since, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.Errorf("bad timestamp %q", raw))
		return
	}

	writeJSON(w, http.StatusOK, &changesResponse{
		ServerID:    s.session.ID(),
		CurrentTime: s.session.Now(),
		Changes:     s.session.ChangesSince(since),
	})
}

func (s *Server) handleUnsupported(op string) httprouter.Handle {
	return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		writeError(w, http.StatusNotImplemented,
			errors.Errorf("%s is not supported by this server", op))
	}
}

// parseRoute turns the catch-all URL parameter ("/site/posts/first.md")
// into a route. Empty, "." and ".." segments are rejected here so they can
// never reach the resolver.
func parseRoute(raw string) (vfs.Route, error) {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return nil, errors.New("empty route")
	}
	segments := strings.Split(trimmed, "/")
	for _, segment := range segments {
		switch segment {
		case "", ".", "..":
			return nil, errors.Errorf("invalid route segment %q", segment)
		}
	}
	return vfs.NewRoute(segments...), nil
}

// readStatus maps snapshot read failures onto HTTP statuses.
func readStatus(err error) int {
	switch {
	case errors.Is(err, vfs.ErrUnknownPartition), errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, vfs.ErrUnsupportedType), errors.Is(err, vfs.ErrNotText):
		return http.StatusBadRequest
	case errors.Is(err, os.ErrPermission):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		webLogger.Error("encoding response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	webLogger.Debug("request failed", zap.Int("status", status), zap.Error(err))
	writeJSON(w, status, &errorResponse{Error: err.Error()})
}
