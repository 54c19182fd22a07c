package api

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/relabs-tech/netpie/core/access"
	"github.com/relabs-tech/netpie/core/logger"
	"github.com/relabs-tech/netpie/core/schema"
	"github.com/relabs-tech/netpie/iot/netpie"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// BatchRequestSchema is the $id of the schema for batch request bodies
const BatchRequestSchema = "https://netpie.relabs.tech/schemas/batch-request.json"

// maxBodySize limits the size of batch request bodies
const maxBodySize = 8 << 20

// API is the RESTful interface to the NETPIE operations
type API struct {
	executor          *netpie.Executor
	defaultCredential string
	requiredRole      string
	cors              bool
	validator         *schema.Validator
}

// Builder is a builder helper for the API
type Builder struct {
	// Router is a mux router. This is mandatory.
	Router *mux.Router
	// Executor runs the operations. This is mandatory.
	Executor *netpie.Executor
	// DefaultCredential is used for batches which do not name a credential. The
	// default is netpie.CredentialName
	DefaultCredential string
	// JwtSecret is optional. When set, operation and credential routes require a
	// HS256 signed bearer token
	JwtSecret string
	// RequiredRole is optional. When set together with JwtSecret, the bearer
	// token must carry this role
	RequiredRole string
	// EnableCORS allows browser based hosts from any origin
	EnableCORS bool
}

// NewAPI realizes the actual API and adds its routes to the router
func NewAPI(b *Builder) *API {
	if b.Router == nil {
		panic("Router is missing")
	}
	if b.Executor == nil {
		panic("Executor is missing")
	}

	validator, err := schema.NewValidatorFromFS(schemaFS, "schemas")
	if err != nil {
		panic(err)
	}

	defaultCredential := b.DefaultCredential
	if defaultCredential == "" {
		defaultCredential = netpie.CredentialName
	}

	a := &API{
		executor:          b.Executor,
		defaultCredential: defaultCredential,
		cors:              b.EnableCORS,
		validator:         validator,
	}
	if b.JwtSecret != "" {
		a.requiredRole = b.RequiredRole
	}
	logger.AddExecutionID(b.Router)
	if b.EnableCORS {
		handleCORS(b.Router)
	}
	handleCompression(b.Router)
	a.handleVersion(b.Router)
	a.handleRoutes(b.Router, b.JwtSecret)
	return a
}

func (a *API) handleRoutes(router *mux.Router, jwtSecret string) {
	rlog := logger.Default()
	rlog.Debugln("netpie: handle route /health GET")
	rlog.Debugln("netpie: handle route /operations/{resource}/{operation} POST")
	rlog.Debugln("netpie: handle route /credentials/{name}/test POST")

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":     "ok",
			"operations": netpie.Operations(),
		})
	}).Methods(a.methods(http.MethodGet)...)

	protected := router.NewRoute().Subrouter()
	if jwtSecret != "" {
		protected.Use(access.NewJwtMiddleware([]byte(jwtSecret)))
	}

	protected.HandleFunc("/operations/{resource}/{operation}", a.handleExecute).Methods(a.methods(http.MethodPost)...)
	protected.HandleFunc("/credentials/{name}/test", a.handleTestCredential).Methods(a.methods(http.MethodPost)...)
}

// methods returns method plus OPTIONS for CORS preflight requests
func (a *API) methods(method string) []string {
	if a.cors {
		return []string{http.MethodOptions, method}
	}
	return []string{method}
}

func (a *API) authorize(w http.ResponseWriter, r *http.Request) bool {
	if a.requiredRole == "" {
		return true
	}
	auth := access.AuthorizationFromContext(r.Context())
	if !auth.HasRole(a.requiredRole) {
		http.Error(w, "missing role "+a.requiredRole, http.StatusForbidden)
		return false
	}
	return true
}

func (a *API) handleExecute(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r) {
		return
	}
	rlog := logger.FromContext(r.Context())
	params := mux.Vars(r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("batch request exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err = a.validator.Validate(BatchRequestSchema, body); err != nil {
		rlog.WithError(err).Infoln("rejected batch request")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var request BatchRequest
	if err = json.Unmarshal(body, &request); err != nil {
		http.Error(w, "invalid batch request: "+err.Error(), http.StatusBadRequest)
		return
	}

	execution := request.Execution(params["resource"], params["operation"], a.defaultCredential)
	records, err := a.executor.Execute(r.Context(), execution)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, newFailureResponse(err))
		return
	}
	writeJSON(w, http.StatusOK, BatchResponse{Records: records})
}

func (a *API) handleTestCredential(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r) {
		return
	}
	name := mux.Vars(r)["name"]
	err := a.executor.TestCredential(r.Context(), name)
	if err == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	logger.FromContext(r.Context()).WithField("credential", name).WithError(err).Warnln("credential test failed")
	if errors.Is(err, netpie.ErrUnknownCredential) {
		http.Error(w, "no such credential", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusBadGateway, newFailureResponse(err))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	jsonData, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(jsonData)
}
