package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"codecraft-studio/config"
	"codecraft-studio/types"
)

// Metadata is everything YouTube needs beyond the video file itself.
type Metadata struct {
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	Visibility  string
}

// Uploader publishes finished videos through the YouTube Data API v3.
// Credentials come from YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET and
// YOUTUBE_REFRESH_TOKEN.
type Uploader struct {
	cfg *config.Config
	log *logrus.Logger
}

// New creates an Uploader.
func New(cfg *config.Config, log *logrus.Logger) *Uploader {
	return &Uploader{cfg: cfg, log: log}
}

// BuildMetadata derives deterministic upload metadata from a finished
// generation.
func (u *Uploader) BuildMetadata(gen *types.Generation, doc *types.LyricDocument) *Metadata {
	tags := []string{"music", "cinematic", "original song", gen.MusicStyle}
	for _, word := range strings.Fields(strings.ToLower(gen.Theme)) {
		if len(word) > 3 && len(tags) < 12 {
			tags = append(tags, word)
		}
	}

	var desc strings.Builder
	fmt.Fprintf(&desc, "%s\n\nAn original cinematic song on the theme of %s.\n", gen.Title, gen.Theme)
	fmt.Fprintf(&desc, "Voice: %s | Music: %s\n\nLyrics:\n%s\n", gen.VoiceStyle, gen.MusicStyle, doc.FullText)

	return &Metadata{
		Title:       gen.Title,
		Description: desc.String(),
		Tags:        tags,
		CategoryID:  u.cfg.Upload.CategoryID,
		Visibility:  u.cfg.Upload.Visibility,
	}
}

// Run uploads the video and returns its ID and watch URL.
func (u *Uploader) Run(ctx context.Context, videoFile string, meta *Metadata) (string, string, error) {
	u.log.Info("[upload] authenticating with YouTube API")

	client, err := u.oauthClient(ctx)
	if err != nil {
		return "", "", fmt.Errorf("youtube auth: %w", err)
	}

	svc, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", "", fmt.Errorf("youtube service: %w", err)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:                meta.Title,
			Description:          meta.Description,
			Tags:                 meta.Tags,
			CategoryId:           meta.CategoryID,
			DefaultLanguage:      u.cfg.Upload.DefaultLanguage,
			DefaultAudioLanguage: u.cfg.Upload.DefaultLanguage,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           meta.Visibility,
			SelfDeclaredMadeForKids: u.cfg.Upload.MadeForKids,
		},
	}

	f, err := os.Open(videoFile)
	if err != nil {
		return "", "", fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	u.log.Infof("[upload] uploading %q", meta.Title)
	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	call.NotifySubscribers(u.cfg.Upload.NotifySubscribers)
	call.Media(f)

	uploaded, err := call.Do()
	if err != nil {
		return "", "", fmt.Errorf("youtube upload: %w", err)
	}

	videoID := uploaded.Id
	videoURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
	u.log.Infof("[upload] uploaded: %s", videoURL)
	return videoID, videoURL, nil
}

func (u *Uploader) oauthClient(ctx context.Context) (*http.Client, error) {
	clientID := os.Getenv("YOUTUBE_CLIENT_ID")
	clientSecret := os.Getenv("YOUTUBE_CLIENT_SECRET")
	refreshToken := os.Getenv("YOUTUBE_REFRESH_TOKEN")
	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, fmt.Errorf("YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET, or YOUTUBE_REFRESH_TOKEN not set")
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeScope},
	}
	token := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}
	return &http.Client{Transport: &oauth2.Transport{Source: conf.TokenSource(ctx, token)}}, nil
}

// LogUpload records the upload result as a JSON file in logDir.
func LogUpload(logDir, videoID, videoURL, videoFile string, meta *Metadata) error {
	entry := map[string]interface{}{
		"video_id":    videoID,
		"video_url":   videoURL,
		"title":       meta.Title,
		"video_file":  videoFile,
		"uploaded_at": time.Now().UTC().Format(time.RFC3339),
	}
	data, _ := json.MarshalIndent(entry, "", "  ")
	path := filepath.Join(logDir, fmt.Sprintf("upload_%s.json", time.Now().Format("20060102_150405")))
	return os.WriteFile(path, data, 0644)
}
