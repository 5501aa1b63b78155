package handler

import (
	"net/http"

	"oyna-console/internal/apiclient"
	"oyna-console/internal/session"
	"oyna-console/pkg/apierror"
	"oyna-console/pkg/response"
)

// currentSession returns the session the Session middleware attached.
func currentSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		response.Error(w, apierror.InternalError("session not available"))
		return nil, false
	}
	return sess, true
}

// sessionClient returns the API client bound to the request's session.
func sessionClient(w http.ResponseWriter, r *http.Request) (*apiclient.Client, *session.Session, bool) {
	sess, ok := currentSession(w, r)
	if !ok {
		return nil, nil, false
	}
	client, err := sess.Client(r.Context())
	if err != nil {
		response.Error(w, apierror.ServiceUnavailable(""))
		return nil, nil, false
	}
	return client, sess, true
}

// remoteError writes err, keeping the status and message of API failures.
func remoteError(w http.ResponseWriter, err error) {
	response.Error(w, apierror.FromRemote(err))
}
