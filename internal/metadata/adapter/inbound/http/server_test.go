package http_handler

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	lambdaHandler "github.com/anthanhphan/go-image-metadata/internal/metadata/adapter/inbound/lambda"
	"github.com/anthanhphan/go-image-metadata/internal/metadata/config"
	"github.com/anthanhphan/go-image-metadata/internal/metadata/domain"
	"github.com/anthanhphan/go-image-metadata/internal/metadata/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type testDeps struct {
	lookup    *mocks.MockLookupService
	ingestion *mocks.MockIngestionService
	uploader  *mocks.MockObjectUploader
}

func newTestServer(t *testing.T) (*Server, testDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)
	deps := testDeps{
		lookup:    mocks.NewMockLookupService(ctrl),
		ingestion: mocks.NewMockIngestionService(ctrl),
		uploader:  mocks.NewMockObjectUploader(ctrl),
	}

	cfg := config.DefaultConfig()
	cfg.Server.RoutePrefix = "/dev-infra-metadata-api"
	cfg.ObjectStore.Bucket = "dev-infra-images"

	srv := NewServer(
		cfg,
		lambdaHandler.NewEndpointHandler(deps.lookup),
		lambdaHandler.NewGeneratorHandler(deps.ingestion),
		deps.uploader,
	)
	return srv, deps
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestServer_Lookup(t *testing.T) {
	srv, deps := newTestServer(t)
	deps.lookup.EXPECT().GetRecord(gomock.Any(), "party").Return(&domain.Record{
		ID:       "party",
		Metadata: []domain.Entity{{"Name": "Alice", "Confidence": 98.2}},
	}, nil)

	resp, err := srv.app.Test(httptest.NewRequest(http.MethodGet, "/dev-infra-metadata-api/party", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"id":"party","metadata":[{"Name":"Alice","Confidence":98.2}]}`, readBody(t, resp))
}

func TestServer_LookupMissing(t *testing.T) {
	srv, deps := newTestServer(t)
	deps.lookup.EXPECT().GetRecord(gomock.Any(), "nobody").Return(nil, nil)

	resp, err := srv.app.Test(httptest.NewRequest(http.MethodGet, "/dev-infra-metadata-api/nobody", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "null", readBody(t, resp))
}

func TestServer_LookupDecodesEscapedID(t *testing.T) {
	srv, deps := newTestServer(t)
	deps.lookup.EXPECT().GetRecord(gomock.Any(), "new year!").Return(&domain.Record{
		ID:       "new year!",
		Metadata: []domain.Entity{{"Name": "fireworks", "Confidence": 91.0}},
	}, nil)

	resp, err := srv.app.Test(httptest.NewRequest(http.MethodGet, "/dev-infra-metadata-api/new%20year%21", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":"new year!","metadata":[{"Name":"fireworks","Confidence":91}]}`, readBody(t, resp))
}

func TestServer_LookupStoreFailure(t *testing.T) {
	srv, deps := newTestServer(t)
	deps.lookup.EXPECT().GetRecord(gomock.Any(), "party").Return(nil, errors.New("table unreachable"))

	resp, err := srv.app.Test(httptest.NewRequest(http.MethodGet, "/dev-infra-metadata-api/party", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "table unreachable")
}

func TestServer_Upload(t *testing.T) {
	srv, deps := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "party.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("key", "photos/party.jpg"))
	require.NoError(t, mw.Close())

	gomock.InOrder(
		deps.uploader.EXPECT().
			PutObject(gomock.Any(), "dev-infra-images", "photos/party.jpg", gomock.Any(), int64(len("jpeg bytes"))).
			Return(nil),
		deps.ingestion.EXPECT().
			ProcessBatch(gomock.Any(), []domain.ObjectRef{{Bucket: "dev-infra-images", Key: "photos/party.jpg"}}).
			Return(nil),
	)

	req := httptest.NewRequest(http.MethodPost, "/images", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"key":"photos/party.jpg","id":"party"}`, readBody(t, resp))
}

func TestServer_UploadMissingFile(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/images", strings.NewReader(""))
	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_S3Event(t *testing.T) {
	srv, deps := newTestServer(t)
	deps.ingestion.EXPECT().
		ProcessBatch(gomock.Any(), []domain.ObjectRef{{Bucket: "images", Key: "a/b c.jpg"}}).
		Return(nil)

	event := `{"Records":[{"s3":{"bucket":{"name":"images"},"object":{"key":"a/b+c.jpg"}}}]}`
	req := httptest.NewRequest(http.MethodPost, "/events/s3", strings.NewReader(event))
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"processed":1}`, readBody(t, resp))
}

func TestServer_S3EventIngestionFailure(t *testing.T) {
	srv, deps := newTestServer(t)
	deps.ingestion.EXPECT().ProcessBatch(gomock.Any(), gomock.Any()).Return(errors.New("object store i/o failed"))

	event := `{"Records":[{"s3":{"bucket":{"name":"images"},"object":{"key":"x.jpg"}}}]}`
	resp, err := srv.app.Test(httptest.NewRequest(http.MethodPost, "/events/s3", strings.NewReader(event)), -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestServer_S3EventRejectsEmptyBatch(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := srv.app.Test(httptest.NewRequest(http.MethodPost, "/events/s3", strings.NewReader(`{"Records":[]}`)), -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
