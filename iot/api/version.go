package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/relabs-tech/netpie/core/logger"
)

var (
	// Version is the version of the current build
	Version = "unset"
)

func (a *API) handleVersion(router *mux.Router) {
	logger.Default().Debugln("netpie: handle route /version GET")
	router.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": Version})
	}).Methods(a.methods(http.MethodGet)...)
}
