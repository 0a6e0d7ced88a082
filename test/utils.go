// Package test holds request helpers, fixtures and service mocks shared by
// the package tests.
package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"time"

	"paletteapi/models"
	"paletteapi/outfits"
	"paletteapi/palette"
	"paletteapi/repository"
	"paletteapi/season"
	"paletteapi/services"

	"github.com/golang-jwt/jwt/v4"
	"github.com/hibiken/asynq"
)

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func GenerateUserToken(subject string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	t, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		log.Fatalf("Error when signing user token for %s. Error %s ", subject, err)
	}
	return t
}

func NewJSONAuthRequest(method string, target string, subject string, param interface{}) *http.Request {
	req := NewJSONRequest(method, target, param)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", GenerateUserToken(subject)))
	return req
}

func NewAuthRequest(method string, target string, subject string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", GenerateUserToken(subject)))
	return req
}

// NewMultipartAuthRequest uploads data as the "image" field next to the
// given form fields. A nil data sends no file at all.
func NewMultipartAuthRequest(method string, target string, subject string, fields map[string]string, data []byte) *http.Request {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		_ = writer.WriteField(k, v)
	}
	if data != nil {
		part, _ := writer.CreateFormFile("image", "upload.png")
		_, _ = part.Write(data)
	}
	_ = writer.Close()

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", GenerateUserToken(subject)))
	return req
}

func NewRefString(data string) *string {
	return &data
}

// FakePNG renders a small solid image.
func FakePNG(fill color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func samples(source models.SampleSource, hexes ...string) []models.ColorSample {
	out := make([]models.ColorSample, len(hexes))
	for i, h := range hexes {
		out[i] = models.ColorSample{Hex: h, Source: source, Confidence: 0.9}
	}
	return out
}

// SpringFeatures reads as a warm, light, low contrast Light Spring.
func SpringFeatures() models.FeatureSet {
	return models.FeatureSet{
		Skin: samples(models.SourceSkin, "#DDB08D"),
		Hair: samples(models.SourceHair, "#B68E6A"),
		Eye:  samples(models.SourceEye, "#8F937F"),
	}
}

// WinterFeatures reads as a cool, high contrast Deep Winter.
func WinterFeatures() models.FeatureSet {
	return models.FeatureSet{
		Skin: samples(models.SourceSkin, "#C7AAA8"),
		Hair: samples(models.SourceHair, "#1D1B1A"),
		Eye:  samples(models.SourceEye, "#372F2C"),
	}
}

// NewStyleService wires a service over the in-process collaborators with
// the embedded palette knowledge base.
func NewStyleService(repo repository.Repository, storage services.StorageProvider, extractor services.FeatureExtractor, chat services.ChatResponder) *services.StyleService {
	kb, err := palette.Default()
	if err != nil {
		log.Fatalf("default palette knowledge base: %v", err)
	}
	return &services.StyleService{
		Repo:       repo,
		Storage:    storage,
		Extractor:  extractor,
		Stylist:    chat,
		Classifier: season.NewClassifier(season.DefaultThresholds()),
		Palettes:   palette.NewGenerator(kb),
		Composer:   outfits.NewComposer(nil),
	}
}

type StorageMock struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	Deleted   []string
	UploadErr error
}

func NewStorageMock() *StorageMock {
	return &StorageMock{Objects: map[string][]byte{}}
}

func (s *StorageMock) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UploadErr != nil {
		return s.UploadErr
	}
	s.Objects[key] = append([]byte(nil), body...)
	return nil
}

func (s *StorageMock) Download(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.Objects[key]
	if !ok {
		return nil, fmt.Errorf("no object %s", key)
	}
	return data, nil
}

func (s *StorageMock) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, key)
	s.Deleted = append(s.Deleted, key)
	return nil
}

func (s *StorageMock) GetPresignedReadURL(ctx context.Context, key string) (string, error) {
	return "https://storage.test/" + key, nil
}

type ExtractorMock struct {
	Features models.FeatureSet
	Err      error
	Calls    int
}

func (m *ExtractorMock) ExtractFeatures(ctx context.Context, image []byte, mimeType string) (models.FeatureSet, error) {
	m.Calls++
	return m.Features, m.Err
}

type TaggerMock struct {
	Tags *services.ClothingTags
	Err  error
}

func (m *TaggerMock) TagClothing(ctx context.Context, image []byte, mimeType string) (*services.ClothingTags, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Tags, nil
}

type ChatMock struct {
	Response    string
	Err         error
	LastSystem  string
	LastHistory []models.ChatMessage
	LastMessage string
}

func (m *ChatMock) Reply(ctx context.Context, system string, history []models.ChatMessage, message string) (string, error) {
	m.LastSystem = system
	m.LastHistory = history
	m.LastMessage = message
	return m.Response, m.Err
}

type Notification struct {
	UserID uint
	Title  string
	Body   string
	Data   map[string]string
}

type NotifierMock struct {
	Sent []Notification
}

func (m *NotifierMock) Notify(ctx context.Context, userID uint, title, body string, data map[string]string) error {
	m.Sent = append(m.Sent, Notification{UserID: userID, Title: title, Body: body, Data: data})
	return nil
}

type EnqueuerMock struct {
	Tasks []*asynq.Task
	Err   error
}

func (m *EnqueuerMock) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.Tasks = append(m.Tasks, task)
	return &asynq.TaskInfo{ID: fmt.Sprint(len(m.Tasks)), Type: task.Type()}, nil
}
