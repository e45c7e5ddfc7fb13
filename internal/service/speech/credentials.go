package speech

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	speechmodel "github.com/shetkarimitra/advisor/internal/model/speech"
)

// ErrMissingCredentials is returned when the app id or access token is empty.
var ErrMissingCredentials = errors.New("volcengine speech credentials missing: set SPEECH_APP_ID and SPEECH_ACCESS_TOKEN")

func resolveCredentials(cfg *speechmodel.SpeechConfig) (appID, token string, err error) {
	if cfg == nil {
		return "", "", ErrMissingCredentials
	}
	appID = strings.TrimSpace(cfg.AppID)
	token = strings.TrimSpace(cfg.AccessToken)
	if appID == "" || token == "" {
		return "", "", ErrMissingCredentials
	}
	return appID, token, nil
}

func authHeader(appID, token, resourceID, connectID string) http.Header {
	if connectID == "" {
		connectID = uuid.NewString()
	}
	header := http.Header{}
	header.Set("X-Api-App-Key", appID)
	header.Set("X-Api-Access-Key", token)
	header.Set("X-Api-Resource-Id", resourceID)
	header.Set("X-Api-Connect-Id", connectID)
	return header
}
