package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rackden/rackden/internal/db/models"
	"github.com/rackden/rackden/internal/db/repos"
	"github.com/rackden/rackden/internal/dispatch"
	"github.com/rackden/rackden/internal/ipmi"
	"github.com/rackden/rackden/internal/services"
)

// recordingDispatcher captures dispatched actions for assertions
type recordingDispatcher struct {
	mu      sync.Mutex
	actions []dispatch.Action
}

func (d *recordingDispatcher) Send(action dispatch.Action) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actions = append(d.actions, action)
	return nil
}

// fakeController answers power operations without touching a BMC
type fakeController struct {
	state   ipmi.PowerState
	lastSet ipmi.PowerState
	fqdns   []string
}

func (f *fakeController) PowerStatus(_ context.Context, fqdn string) (ipmi.PowerState, error) {
	f.fqdns = append(f.fqdns, fqdn)
	return f.state, nil
}

func (f *fakeController) SetPower(_ context.Context, fqdn string, state ipmi.PowerState) error {
	f.fqdns = append(f.fqdns, fqdn)
	f.lastSet = state
	return nil
}

// testEnv bundles everything a handler test needs
type testEnv struct {
	app        *fiber.App
	db         *gorm.DB
	dispatcher *recordingDispatcher
	controller *fakeController
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_json=1"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to create in-memory database")
	require.NoError(t, db.AutoMigrate(
		&models.Aggregate{},
		&models.Instance{},
		&models.Host{},
		&models.Template{},
		&models.ProvisionLogEvent{},
	))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	dispatcher := &recordingDispatcher{}
	handle := dispatch.NewHandle()
	handle.Init(dispatcher)

	service := services.NewBookingService(db, handle)
	controller := &fakeController{state: ipmi.PowerOn}

	app := fiber.New()
	registerTestRoutes(app, NewBookingHandler(service), NewIPMIHandler(service, controller))

	return &testEnv{app: app, db: db, dispatcher: dispatcher, controller: controller}
}

// registerTestRoutes mirrors the production route table; the routes
// package cannot be imported here without an import cycle
func registerTestRoutes(app *fiber.App, booking *BookingHandler, ipmiHandler *IPMIHandler) {
	group := app.Group("/api/v1/booking")
	group.Post("/create", booking.Create)
	group.Get("/ipmi/:instance_id/powerstatus", ipmiHandler.PowerStatus)
	group.Post("/ipmi/:instance_id/setpower", ipmiHandler.SetPower)
	group.Get("/ipmi/:instance_id/getfqdn", ipmiHandler.GetFQDN)
	group.Get("/:agg_id/status", booking.GetStatus)
	group.Delete("/:agg_id/end", booking.End)
	group.Post("/:instance_id/reimage", booking.Reimage)
	group.Post("/:agg_id/notify/expiring", booking.NotifyExpiring)
	group.Post("/:agg_id/request-extension", booking.RequestExtension)
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.app.Test(req, int((5 * time.Second).Milliseconds()))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// Fixtures

func (e *testEnv) createTemplate(t *testing.T) *models.Template {
	t.Helper()
	template := &models.Template{
		Name: "lab-" + uuid.NewString(),
		HostConfigs: models.TemplateHostConfigs{
			{Hostname: "node1", Image: "ubuntu-22-04", Flavor: "gp.medium"},
		},
	}
	require.NoError(t, repos.NewTemplateRepository(e.db).Create(context.Background(), template))
	return template
}

func (e *testEnv) createHost(t *testing.T) *models.Host {
	t.Helper()
	host := &models.Host{
		ServerName: "rack1-" + uuid.NewString(),
		IPMIFQDN:   "ipmi.rack1.example.com",
	}
	require.NoError(t, repos.NewHostRepository(e.db).Create(context.Background(), host))
	return host
}

func (e *testEnv) createAggregate(t *testing.T, templateID uint) *models.Aggregate {
	t.Helper()
	aggregate := &models.Aggregate{
		State:      models.AggregateStateActive,
		TemplateID: templateID,
		Configuration: models.AggregateConfiguration{
			Owner:   "test-owner",
			Project: "test-project",
		},
	}
	require.NoError(t, repos.NewAggregateRepository(e.db).Create(context.Background(), aggregate))
	return aggregate
}

func (e *testEnv) createInstance(t *testing.T, aggregateID uuid.UUID, linkedHost *uint) *models.Instance {
	t.Helper()
	instance := &models.Instance{
		AggregateID:  aggregateID,
		Hostname:     "node1",
		Image:        "ubuntu-22-04",
		State:        models.InstanceStateReady,
		LinkedHostID: linkedHost,
	}
	require.NoError(t, repos.NewInstanceRepository(e.db).Create(context.Background(), instance))
	return instance
}
