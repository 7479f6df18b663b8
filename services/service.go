package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humamux"
	"github.com/gorilla/mux"
	"golang.org/x/net/netutil"

	"github.com/oarepo/depositd/config"
	"github.com/oarepo/depositd/deposit"
	"github.com/oarepo/depositd/links"
	"github.com/oarepo/depositd/pidstore"
	"github.com/oarepo/depositd/vocabularies"
)

// Version numbers
var majorVersion = 0
var minorVersion = 1
var patchVersion = 0

// Version string
var version = fmt.Sprintf("%d.%d.%d", majorVersion, minorVersion, patchVersion)

// This type implements the DepositService interface, validating deposit
// metadata and serializing stored records with computed links.
type service struct {
	// name of the service
	Name string
	// service version identifier
	Version string
	// time which the service was started
	StartTime time.Time
	// port on which the service currently runs
	Port int
	// router for REST endpoints
	Router *mux.Router
	// API wrapper
	API huma.API
	// HTTP server.
	Server *http.Server

	// metadata validator
	Validator *deposit.Validator
	// record serializer
	Dumper *links.Dumper
	// PID store
	Store *pidstore.BoltStore
}

type ServiceInfoOutput struct {
	Body ServiceInfoResponse `doc:"information about the service itself"`
}

// handler method for root
func (svc *service) getRoot(ctx context.Context,
	input *struct{}) (*ServiceInfoOutput, error) {

	slog.Info("Querying root endpoint...")
	return &ServiceInfoOutput{
		Body: ServiceInfoResponse{
			Name:          svc.Name,
			Version:       svc.Version,
			Uptime:        int(svc.uptime()),
			Documentation: "/docs",
		},
	}, nil
}

type ValidationOutput struct {
	Status int
	Body   ValidationResultResponse `doc:"The validation outcome: normalized metadata, or every failing field"`
}

// handler method for validating and normalizing deposit metadata
func (svc *service) validateDeposit(ctx context.Context,
	input *struct {
		RecordId          string `query:"record_id" doc:"recid of the record being updated (empty for a new record)"`
		DoiRequired       bool   `query:"doi_required" doc:"require a non-empty DOI"`
		ResolveReferences bool   `query:"resolve_refs" doc:"dereference license/grant reference pointers"`
		RawBody           json.RawMessage
	}) (*ValidationOutput, error) {

	slog.Info("Validating deposit metadata...")
	metadata, err := svc.Validator.ValidateAndNormalize(input.RawBody, deposit.Options{
		RecordID:          input.RecordId,
		DOIRequired:       input.DoiRequired,
		ResolveReferences: input.ResolveReferences,
	})
	if err != nil {
		var validationErrs *deposit.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return nil, err
		}
		slog.Info(fmt.Sprintf("Validation failed with %d error(s)", len(validationErrs.Errors)))
		return &ValidationOutput{
			Status: http.StatusBadRequest,
			Body: ValidationResultResponse{
				Status:  http.StatusBadRequest,
				Message: "Validation error.",
				Errors:  validationErrs.Errors,
			},
		}, nil
	}
	return &ValidationOutput{
		Status: http.StatusOK,
		Body: ValidationResultResponse{
			Status:   http.StatusOK,
			Message:  "Metadata is valid.",
			Metadata: metadata,
		},
	}, nil
}

type RecordOutput struct {
	Body json.RawMessage `doc:"The serialized record with computed links"`
}

// handler method for fetching a published record with computed links
func (svc *service) getRecord(ctx context.Context,
	input *struct {
		Id string `path:"id" example:"1234" doc:"the record identifier"`
	}) (*RecordOutput, error) {
	return svc.dumpRecord("recid", input.Id)
}

// handler method for fetching a deposit with computed links
func (svc *service) getDeposit(ctx context.Context,
	input *struct {
		Id string `path:"id" example:"1234" doc:"the deposit identifier"`
	}) (*RecordOutput, error) {
	return svc.dumpRecord("depid", input.Id)
}

func (svc *service) dumpRecord(pidType, id string) (*RecordOutput, error) {
	slog.Info(fmt.Sprintf("Serializing %s %s...", pidType, id))
	_, doc, err := svc.Store.Resolve(pidType, id)
	if err != nil {
		var notFound *pidstore.NotFoundError
		if errors.As(err, &notFound) {
			return nil, huma.Error404NotFound(err.Error())
		}
		return nil, err
	}
	dumped, err := svc.Dumper.Dump(links.Record{
		PID:      id,
		Created:  createdFrom(doc),
		Metadata: doc,
	})
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(dumped)
	if err != nil {
		return nil, err
	}
	return &RecordOutput{Body: data}, nil
}

type ExpiredEmbargoesOutput struct {
	Body ExpiredEmbargoesResponse `doc:"Identifiers of records whose embargo has expired"`
}

// handler method for querying records whose embargo period has expired
func (svc *service) getExpiredEmbargoes(ctx context.Context,
	input *struct{}) (*ExpiredEmbargoesOutput, error) {

	slog.Info("Querying expired embargoes...")
	ids, err := svc.Store.FindExpiredEmbargoes(time.Now())
	if err != nil {
		return nil, err
	}
	return &ExpiredEmbargoesOutput{
		Body: ExpiredEmbargoesResponse{Ids: ids},
	}, nil
}

// the creation timestamp a stored document carries, if any
func createdFrom(doc map[string]any) time.Time {
	created, ok := doc["_created"].(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return time.Time{}
	}
	return t
}

// returns the uptime for the service in seconds
func (svc *service) uptime() float64 {
	return time.Since(svc.StartTime).Seconds()
}

// constructs a deposit metadata service given our configuration and an open
// PID store
func NewDepositService(store *pidstore.BoltStore) (DepositService, error) {

	// validate our configuration
	if config.Site.SiteURL == "" || config.Site.APIURL == "" {
		return nil, fmt.Errorf("No site URLs were specified.")
	}
	if store == nil {
		return nil, fmt.Errorf("No PID store was provided.")
	}

	svc := new(service)
	svc.Name = "depositd"
	svc.Version = version
	svc.Port = -1
	svc.Store = store

	svc.Validator = deposit.NewValidator(deposit.DOIPolicy{
		AllowedDOIs:     config.DOI.AllowedDOIs,
		ManagedPrefixes: config.DOI.ManagedPrefixes,
		BannedPrefixes:  config.DOI.BannedPrefixes,
	})
	svc.Validator.Store = store

	svc.Dumper = &links.Dumper{
		Config: links.Config{
			SiteURL:        config.Site.SiteURL,
			APIURL:         config.Site.APIURL,
			ThumbnailTypes: vocabularies.DefaultThumbnailTypes(),
			ThumbnailSizes: vocabularies.DefaultThumbnailSizes(),
		},
	}

	// set up routing
	svc.Router = mux.NewRouter()
	api := humamux.New(svc.Router, huma.DefaultConfig(svc.Name, svc.Version))
	huma.Get(api, "/", svc.getRoot)

	// API v1
	huma.Post(api, "/api/v1/deposits/validate", svc.validateDeposit)
	huma.Get(api, "/api/v1/deposits/{id}", svc.getDeposit)
	huma.Get(api, "/api/v1/records/{id}", svc.getRecord)
	huma.Get(api, "/api/v1/records/embargoes/expired", svc.getExpiredEmbargoes)
	svc.API = api

	return svc, nil
}

// starts the deposit metadata service
func (svc *service) Start(port int) error {
	slog.Info(fmt.Sprintf("Starting %s service on port %d...", svc.Name, port))
	slog.Info(fmt.Sprintf("(Accepting up to %d connections)", config.Service.MaxConnections))

	svc.StartTime = time.Now()

	// create a listener that limits the number of incoming connections
	svc.Port = port
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		return err
	}
	defer listener.Close()
	listener = netutil.LimitListener(listener, config.Service.MaxConnections)

	// start the server
	svc.Server = &http.Server{
		Handler: svc.Router}
	err = svc.Server.Serve(listener)

	// we don't report the server closing as an error
	if err != http.ErrServerClosed {
		return err
	}
	return nil
}

// gracefully shuts down the service without interrupting active connections
func (svc *service) Shutdown(ctx context.Context) error {
	if svc.Server != nil {
		return svc.Server.Shutdown(ctx)
	}
	return nil
}

// closes down the service abruptly, freeing all resources
func (svc *service) Close() {
	if svc.Server != nil {
		svc.Server.Close()
	}
}
