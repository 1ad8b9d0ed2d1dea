package integration

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"khata/internal/classify"
	"khata/internal/handlers"
	"khata/internal/logger"
	"khata/internal/merchant"
	"khata/internal/middleware"
	"khata/internal/models"
	"khata/internal/services"
	"khata/internal/validator"
)

// testAPIKey protects the ingestion routes in tests.
const testAPIKey = "test-ingest-key"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB       *gorm.DB
	Router   *gin.Engine
	TraceDir string
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.LedgerEntry{}, &models.UserOverride{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	// AutoMigrate cannot express the production partial index; apply it so
	// uniqueness behaves as it does under the real schema.
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_ledger_entries_content_hash_live
		ON ledger_entries (content_hash)
		WHERE deleted_at IS NULL AND content_hash <> ''`).Error
	if err != nil {
		t.Fatalf("failed to apply content hash index: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory
// SQLite, with trace persistence enabled into a per-test directory.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)
	traceDir := t.TempDir()

	dict := merchant.NewDictionary(map[string]string{
		"swiggy": "Swiggy",
		"zomato": "Zomato",
		"amzn":   "Amazon",
	})
	handles := merchant.NewHandleSet([]string{"rahul.sharma"})

	classifier := classify.New(handles)
	normalizer := merchant.NewNormalizer(dict)
	ingestionService := services.NewIngestionService(db, classifier, normalizer)
	ledgerService := services.NewLedgerService(db)
	dedupService := services.NewDedupService(db)

	messageHandler := handlers.NewMessageHandler(ingestionService, traceDir, true)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService, dedupService)
	traceHandler := handlers.NewTraceHandler(traceDir)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	messages := v1.Group("/messages")
	messages.Use(middleware.IngestAuthMiddleware(testAPIKey))
	messages.POST("/classify", messageHandler.ClassifyMessage)
	messages.POST("/scan", messageHandler.ScanMessages)

	ledger := v1.Group("/ledger")
	ledger.GET("/entries", ledgerHandler.ListEntries)
	ledger.GET("/entries/:id", ledgerHandler.GetEntryByID)
	ledger.DELETE("/entries/:id", ledgerHandler.DeleteEntry)
	ledger.POST("/entries/:id/override", ledgerHandler.OverrideEntry)
	ledger.POST("/repair", ledgerHandler.RepairLedger)

	traces := v1.Group("/traces")
	traces.GET("", traceHandler.ListTraceFiles)
	traces.GET("/export", traceHandler.ExportTraces)

	return &testApp{DB: db, Router: router, TraceDir: traceDir}
}

// request makes an HTTP request to the test router and returns the recorder.
// apiKey, when non-empty, is sent in the X-API-Key header.
func (app *testApp) request(method, path, body, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// classifyMessage posts one message to the classify endpoint and returns the
// outcome object. Fails the test unless the response matches wantStatus.
func (app *testApp) classifyMessage(t *testing.T, sender, body string, wantStatus int) map[string]interface{} {
	t.Helper()
	payload := fmt.Sprintf(`{"sender":%q,"body":%q}`, sender, body)
	rec := app.request("POST", "/api/v1/messages/classify", payload, testAPIKey)
	if rec.Code != wantStatus {
		t.Fatalf("classify returned %d, want %d: %s", rec.Code, wantStatus, rec.Body.String())
	}
	result := parseJSON(t, rec)
	outcome, ok := result["outcome"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected outcome object, got: %v", result)
	}
	return outcome
}
