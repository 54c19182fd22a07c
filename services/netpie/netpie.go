package main

import (
	"fmt"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joeshaw/envdecode"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/netpie/core/logger"
	"github.com/relabs-tech/netpie/iot/api"
	"github.com/relabs-tech/netpie/iot/netpie"
)

// Service holds the configuration for this service
//
// use NETPIE_CLIENT_ID="..." NETPIE_TOKEN="..."
// and optionally JWT_SECRET="..." to protect the operation routes
type Service struct {
	netpie.Config
	Port         int    `env:"PORT,default=3000" description:"the port to listen on"`
	JwtSecret    string `env:"JWT_SECRET,optional" description:"secret for HS256 signed bearer tokens"`
	RequiredRole string `env:"JWT_REQUIRED_ROLE,optional" description:"role a bearer token must carry"`
	EnableCORS   bool   `env:"ENABLE_CORS,default=false" description:"allow browser based hosts from any origin"`
}

func main() {
	service := &Service{}
	if err := envdecode.Decode(service); err != nil {
		panic(err)
	}
	logger.InitLogger(logger.ParseLevel(service.LogLevel))
	rlog := logger.Default()

	executor, err := service.NewExecutor()
	if err != nil {
		rlog.WithError(err).Fatalln("invalid configuration")
	}

	router := mux.NewRouter()
	api.NewAPI(&api.Builder{
		Router:            router,
		Executor:          executor,
		DefaultCredential: service.Credential,
		JwtSecret:         service.JwtSecret,
		RequiredRole:      service.RequiredRole,
		EnableCORS:        service.EnableCORS,
	})

	out := logrus.StandardLogger().Writer()
	defer out.Close()
	handler := handlers.LoggingHandler(out, router)

	rlog.WithField("baseURL", executor.BaseURL()).Infof("listen on port :%d", service.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", service.Port), handler); err != nil {
		rlog.WithError(err).Fatalln("server stopped")
	}
}
