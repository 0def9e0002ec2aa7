// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/juju/juju-dashboard/rpc/params"
)

const controllerUUID = "deadbeef-1bad-500d-9000-4b1d0d06f00d"

type handlerFunc func(id string, args json.RawMessage) (interface{}, *params.Error)

type apiCall struct {
	ModelUUID string
	Facade    string
	Version   int
	Id        string
	Method    string
	Params    string
}

// fakeServer speaks enough of the controller API to log in and answer
// the calls registered on it.
type fakeServer struct {
	srv *httptest.Server

	mu       sync.Mutex
	calls    []apiCall
	facades  []params.FacadeVersions
	loginErr *params.Error
	handlers map[string]handlerFunc
	conns    []*websocket.Conn
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func newFakeServer() *fakeServer {
	f := &fakeServer{
		facades: []params.FacadeVersions{
			{Name: "Admin", Versions: []int{3}},
			{Name: "AllWatcher", Versions: []int{1, 2, 3, 4}},
			{Name: "Annotations", Versions: []int{2}},
			{Name: "Charms", Versions: []int{6, 7}},
			{Name: "Client", Versions: []int{6, 7, 8}},
			{Name: "Controller", Versions: []int{11, 12}},
			{Name: "ModelManager", Versions: []int{9, 10}},
			{Name: "Pinger", Versions: []int{1}},
			{Name: "Secrets", Versions: []int{1, 2}},
		},
		handlers: make(map[string]handlerFunc),
	}
	router := mux.NewRouter()
	router.HandleFunc("/api", f.serveAPI)
	router.HandleFunc("/model/{modelUUID}/api", f.serveAPI)
	f.srv = httptest.NewServer(router)
	return f
}

func (f *fakeServer) Close() {
	f.srv.Close()
}

// addr returns the controller endpoint.
func (f *fakeServer) addr() string {
	return "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/api"
}

func (f *fakeServer) handle(facade, method string, handler handlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[facade+"."+method] = handler
}

func (f *fakeServer) reply(facade, method string, result interface{}) {
	f.handle(facade, method, func(string, json.RawMessage) (interface{}, *params.Error) {
		return result, nil
	})
}

func (f *fakeServer) setFacades(facades ...params.FacadeVersions) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.facades = append(f.facades, facades...)
}

// setFacadeVersions replaces the versions offered for one facade. No
// versions removes the facade.
func (f *fakeServer) setFacadeVersions(name string, versions ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var facades []params.FacadeVersions
	for _, facade := range f.facades {
		if facade.Name != name {
			facades = append(facades, facade)
		}
	}
	if len(versions) > 0 {
		facades = append(facades, params.FacadeVersions{Name: name, Versions: versions})
	}
	f.facades = facades
}

func (f *fakeServer) setLoginError(err *params.Error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginErr = err
}

// recorded returns the calls made other than logins and pings.
func (f *fakeServer) recorded() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var calls []apiCall
	for _, call := range f.calls {
		if call.Facade == "Admin" || call.Facade == "Pinger" {
			continue
		}
		calls = append(calls, call)
	}
	return calls
}

func (f *fakeServer) allCalls() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiCall(nil), f.calls...)
}

// dropConnections closes every websocket the server has accepted.
func (f *fakeServer) dropConnections() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ws := range f.conns {
		_ = ws.Close()
	}
	f.conns = nil
}

func (f *fakeServer) serveAPI(w http.ResponseWriter, req *http.Request) {
	ws, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}
	defer ws.Close()
	f.mu.Lock()
	f.conns = append(f.conns, ws)
	f.mu.Unlock()
	modelUUID := mux.Vars(req)["modelUUID"]
	for {
		var msg struct {
			RequestId uint64          `json:"request-id"`
			Type      string          `json:"type"`
			Version   int             `json:"version"`
			Id        string          `json:"id"`
			Request   string          `json:"request"`
			Params    json.RawMessage `json:"params"`
		}
		if err := ws.ReadJSON(&msg); err != nil {
			return
		}
		result, apiErr := f.dispatch(apiCall{
			ModelUUID: modelUUID,
			Facade:    msg.Type,
			Version:   msg.Version,
			Id:        msg.Id,
			Method:    msg.Request,
			Params:    string(msg.Params),
		}, msg.Params)
		reply := map[string]interface{}{"request-id": msg.RequestId}
		if apiErr != nil {
			reply["error"] = apiErr.Message
			reply["error-code"] = apiErr.Code
		} else {
			reply["response"] = result
		}
		if err := ws.WriteJSON(reply); err != nil {
			return
		}
	}
}

func (f *fakeServer) dispatch(call apiCall, args json.RawMessage) (interface{}, *params.Error) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	handler := f.handlers[call.Facade+"."+call.Method]
	loginErr := f.loginErr
	facades := f.facades
	f.mu.Unlock()

	if handler != nil {
		return handler(call.Id, args)
	}
	switch call.Facade + "." + call.Method {
	case "Admin.Login":
		if loginErr != nil {
			return nil, loginErr
		}
		return params.LoginResult{
			ControllerTag: "controller-" + controllerUUID,
			Facades:       facades,
			ServerVersion: "3.1.6",
			UserInfo: &params.AuthUserInfo{
				DisplayName:      "admin",
				Identity:         "user-admin",
				ControllerAccess: "superuser",
			},
		}, nil
	case "Pinger.Ping":
		return struct{}{}, nil
	}
	return nil, &params.Error{
		Message: fmt.Sprintf("no such request - method %s.%s is not implemented", call.Facade, call.Method),
	}
}
