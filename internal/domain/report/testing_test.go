package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"foodreport/internal/database"
	"foodreport/internal/imagestore"
	"foodreport/internal/pkg/apperr"
	"foodreport/internal/pkg/logger"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail = "admin@example.com"
	baseURL    = "https://img.example.com"
)

// jpegBytes starts with the JPEG SOI marker so content sniffing accepts it.
var jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, make([]byte, 64)...)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

func testRepository(t *testing.T) *Repository {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), logger.Discard())
	require.NoError(t, err)
	repo := NewRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

type emailGate string

func (g emailGate) Authorize(email string) error {
	if !strings.EqualFold(strings.TrimSpace(email), string(g)) {
		return apperr.Unauthorized("unauthorized email")
	}
	return nil
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) UserIDByEmail(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

// flakyImages wraps Memory and fails selected operations.
type flakyImages struct {
	*imagestore.Memory
	failPut    bool
	failDelete bool
}

func (f *flakyImages) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if f.failPut {
		return errors.New("bucket unavailable")
	}
	return f.Memory.Put(ctx, key, data, contentType)
}

func (f *flakyImages) Delete(ctx context.Context, key string) error {
	if f.failDelete {
		return errors.New("bucket unavailable")
	}
	return f.Memory.Delete(ctx, key)
}

// failingStore makes every write fail after delegating reads.
type failingStore struct {
	Store
}

func (failingStore) Create(context.Context, Report) error { return errors.New("db down") }
func (failingStore) Update(context.Context, Report) error { return errors.New("db down") }

type fixture struct {
	svc    *Service
	repo   *Repository
	images *flakyImages
	users  *MockUserDirectory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := testRepository(t)
	images := &flakyImages{Memory: imagestore.NewMemory()}
	users := new(MockUserDirectory)
	users.On("UserIDByEmail", mock.Anything, adminEmail).Return("user-1", nil).Maybe()

	svc := NewService(repo, images, users, emailGate(adminEmail), baseURL+"/", logger.Discard(), nil)
	var seq atomic.Int64
	svc.newKey = func() string { return imgStem(int(seq.Add(1))) }
	return &fixture{svc: svc, repo: repo, images: images, users: users}
}

// imgStem is the n-th deterministic uuid handed out as an image key.
func imgStem(n int) string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
}

func imgKey(n int, ext string) string {
	return imgStem(n) + ext
}

func ramenInput() Input {
	return Input{
		ShopName:     "ほげ食堂",
		Name:         "ラーメン",
		Place:        "東京",
		Rating:       5,
		Comment:      "とても美味しかったです",
		Link:         "",
		DateYYYYMMDD: "20240101",
	}
}

func ramenImage() Image {
	return Image{Filename: "ramen.jpg", Data: jpegBytes}
}
