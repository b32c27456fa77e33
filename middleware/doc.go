// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /ideas", middleware.WithLogging(handler))

One line is logged per request once it completes, with request_id, method,
path, remote, status, bytes and duration_ms. Status and size are captured
with httpsnoop, which keeps the writer hijackable for websocket upgrades.
The request id is taken from X-Request-ID or generated, and echoed back in
the response header.

# CORS Middleware

Enable cross-origin requests for browser clients:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")

Error bodies have the shape {"success":false,"error":"Bad Request","message":"..."}.

	var req models.CreateIdeaRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Honours X-Forwarded-For (first hop) and X-Real-IP before RemoteAddr.
*/
package middleware
