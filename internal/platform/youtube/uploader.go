package youtube

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"
)

// Config holds OAuth credentials and upload defaults for the YouTube
// Data API v3.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	Category     string
	Privacy      string
}

// Metadata describes the video being uploaded.
type Metadata struct {
	Title       string
	Description string
	Tags        []string
}

// Uploader publishes composed videos to YouTube via resumable upload.
type Uploader struct {
	cfg *Config
}

// NewUploader creates a new Uploader.
// Parameters:
//   - cfg: OAuth credentials and upload defaults.
// Returns:
//   - *Uploader: initialized uploader.
func NewUploader(cfg *Config) *Uploader {
	return &Uploader{cfg: cfg}
}

// Upload uploads a video file with its metadata.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - videoPath: local path of the video file.
//   - meta: title, description, and tags for the upload.
// Returns:
//   - string: YouTube video ID.
//   - string: public watch URL.
//   - error: non-nil if authentication or upload fails.
func (u *Uploader) Upload(ctx context.Context, videoPath string, meta *Metadata) (string, string, error) {
	httpClient, err := u.oauthClient(ctx)
	if err != nil {
		return "", "", fmt.Errorf("youtube auth: %w", err)
	}

	svc, err := youtubeapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return "", "", fmt.Errorf("youtube service: %w", err)
	}

	privacy := u.cfg.Privacy
	if privacy == "" {
		privacy = "public"
	}

	video := &youtubeapi.Video{
		Snippet: &youtubeapi.VideoSnippet{
			Title:       meta.Title,
			Description: meta.Description,
			Tags:        meta.Tags,
			CategoryId:  u.cfg.Category,
		},
		Status: &youtubeapi.VideoStatus{
			PrivacyStatus:           privacy,
			SelfDeclaredMadeForKids: false,
		},
	}

	f, err := os.Open(videoPath)
	if err != nil {
		return "", "", fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	// Resumable upload, required for files over 5MB.
	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	call.Media(f)

	uploaded, err := call.Do()
	if err != nil {
		return "", "", fmt.Errorf("youtube upload: %w", err)
	}

	return uploaded.Id, fmt.Sprintf("https://www.youtube.com/watch?v=%s", uploaded.Id), nil
}

// oauthClient builds an HTTP client that refreshes the access token from
// the stored refresh token on demand.
func (u *Uploader) oauthClient(ctx context.Context) (*http.Client, error) {
	if u.cfg.ClientID == "" || u.cfg.ClientSecret == "" || u.cfg.RefreshToken == "" {
		return nil, fmt.Errorf("client_id, client_secret, and refresh_token are required")
	}

	conf := &oauth2.Config{
		ClientID:     u.cfg.ClientID,
		ClientSecret: u.cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtubeapi.YoutubeUploadScope},
	}

	token := &oauth2.Token{
		RefreshToken: u.cfg.RefreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}

	return conf.Client(ctx, token), nil
}
