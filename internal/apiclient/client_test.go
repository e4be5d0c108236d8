package apiclient_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"foodreport/internal/apiclient"
	"foodreport/internal/database"
	"foodreport/internal/domain/auth"
	"foodreport/internal/domain/report"
	"foodreport/internal/domain/user"
	"foodreport/internal/imagestore"
	"foodreport/internal/pkg/jwt"
	"foodreport/internal/pkg/logger"
	"foodreport/internal/pkg/metrics"
	"foodreport/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminEmail = "admin@example.com"

var jpeg = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 32)...)

func newTestAPI(t *testing.T) (*apiclient.Client, *imagestore.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Discard()
	db, err := database.Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()), log)
	require.NoError(t, err)

	ctx := context.Background()
	reports := report.NewRepository(db)
	users := user.NewRepository(db)
	require.NoError(t, reports.Migrate(ctx))
	require.NoError(t, users.Migrate(ctx))
	require.NoError(t, users.Create(ctx, &user.User{Name: "Admin", Email: adminEmail}))

	images := imagestore.NewMemory()
	m := metrics.New(prometheus.NewRegistry())
	gate := auth.NewGate(adminEmail)
	jwtService := jwt.New("secret", time.Hour)
	srv := httptest.NewServer(server.NewAPI(server.APIDeps{
		Reports:            report.NewService(reports, images, users, gate, "https://img.example.com", log, m),
		Auth:               auth.NewService(gate, jwtService, log, m),
		JWT:                jwtService,
		Log:                log,
		Metrics:            m,
		CORSAllowedOrigins: []string{"*"},
	}))
	t.Cleanup(srv.Close)
	return apiclient.New(srv.URL, srv.Client()), images
}

func ramenForm() apiclient.ReportForm {
	return apiclient.ReportForm{
		ShopName:     "ほげ食堂",
		Name:         "ラーメン",
		Place:        "東京",
		Rating:       5,
		Comment:      "とても美味しかったです",
		DateYYYYMMDD: "20240101",
		Image:        &report.Image{Filename: "ramen.jpg", Data: jpeg},
	}
}

func TestClientLifecycle(t *testing.T) {
	c, images := newTestAPI(t)
	ctx := context.Background()

	token, err := c.Login(ctx, adminEmail)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	created, err := c.CreateReport(ctx, token, ramenForm())
	require.NoError(t, err)
	assert.Equal(t, 5, created.Rating)
	assert.Equal(t, 1, images.Len())

	got, err := c.GetReportByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	f := ramenForm()
	f.ID = created.ID
	f.Rating = 3
	f.Image = nil
	updated, err := c.UpdateReport(ctx, token, f)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Rating)
	assert.Equal(t, created.ImgURL, updated.ImgURL)

	list, err := c.GetReports(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, c.DeleteReport(ctx, token, created.ID))
	_, err = c.GetReportByID(ctx, created.ID)
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "report not found", apiErr.Message)
	assert.Equal(t, 0, images.Len())
}

func TestClientLoginRejected(t *testing.T) {
	c, _ := newTestAPI(t)

	_, err := c.Login(context.Background(), "intruder@example.com")
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "unauthorized email", apiErr.Message)
}

func TestClientValidationMessage(t *testing.T) {
	c, _ := newTestAPI(t)
	ctx := context.Background()
	token, err := c.Login(ctx, adminEmail)
	require.NoError(t, err)

	f := ramenForm()
	f.DateYYYYMMDD = "2024-01-01"
	_, err = c.CreateReport(ctx, token, f)
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Message, "dateYYYYMMDD")
}

func TestClientNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := apiclient.New(srv.URL, nil).GetReports(context.Background())
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}
