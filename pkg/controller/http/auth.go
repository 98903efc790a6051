package http

import (
	"html/template"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/aoi-lab/chatkeeper/pkg/usecase"
	"github.com/aoi-lab/chatkeeper/pkg/utils/errutil"
	"github.com/aoi-lab/chatkeeper/pkg/utils/logging"
)

const stateCookieName = "chatkeeper_oauth_state"

var installPageTmpl = template.Must(template.New("install").Parse(`<!DOCTYPE html>
<html>
<head><title>chatkeeper</title></head>
<body>
<h1>chatkeeper</h1>
<p>Keeps your Slack status in sync while you chat, and erases your recent messages on command.</p>
<p><a href="{{.AuthorizeURL}}">Add to Slack</a></p>
</body>
</html>
`))

var resultPageTmpl = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html>
<head><title>chatkeeper</title></head>
<body>
{{if .OK}}<h1>All set!</h1><p>chatkeeper is now authorized for your account.</p>
{{else}}<h1>Authorization failed</h1><p>{{.Message}}</p>{{end}}
</body>
</html>
`))

// installPageHandler renders the landing page with the "Add to Slack" link.
// A random state value is bound to a short-lived cookie and checked on the
// callback.
func installPageHandler(authUC *usecase.AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     stateCookieName,
			Value:    state,
			Path:     "/",
			HttpOnly: true,
			MaxAge:   int((10 * time.Minute).Seconds()),
			SameSite: http.SameSiteLaxMode,
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := installPageTmpl.Execute(w, map[string]string{
			"AuthorizeURL": authUC.AuthorizeURL(state),
		}); err != nil {
			logging.From(r.Context()).Error("failed to render install page", "error", err)
		}
	}
}

// oauthCallbackHandler finishes the install flow: verifies the state,
// exchanges the code and stores the user's token.
func oauthCallbackHandler(authUC *usecase.AuthUseCase) http.HandlerFunc {
	renderResult := func(w http.ResponseWriter, r *http.Request, ok bool, msg string) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := resultPageTmpl.Execute(w, map[string]any{"OK": ok, "Message": msg}); err != nil {
			logging.From(r.Context()).Error("failed to render result page", "error", err)
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if errParam := r.URL.Query().Get("error"); errParam != "" {
			logging.From(ctx).Warn("slack authorization denied", "error", errParam)
			renderResult(w, r, false, "Slack reported: "+errParam)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			errutil.HandleHTTP(ctx, w, goerr.New("missing authorization code"), http.StatusBadRequest)
			return
		}

		cookie, err := r.Cookie(stateCookieName)
		if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
			errutil.HandleHTTP(ctx, w, goerr.New("oauth state mismatch"), http.StatusBadRequest)
			return
		}

		userID, err := authUC.HandleCallback(ctx, code)
		if err != nil {
			errutil.Handle(ctx, err, "oauth callback failed")
			renderResult(w, r, false, "Could not complete the authorization.")
			return
		}

		logging.From(ctx).Info("user installation completed", "user", userID)
		renderResult(w, r, true, "")
	}
}
