package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/seasons/{season}/weeks/{week}/games", handler.ListWeekGames)
	mux.HandleFunc("GET /v1/seasons/{season}/weeks/{week}/leaderboard", handler.GetWeekLeaderboard)
	mux.HandleFunc("GET /v1/seasons/{season}/leaderboard", handler.GetSeasonLeaderboard)
	mux.HandleFunc("POST /v1/anonymous-picks", handler.SubmitAnonymousPicks)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/picks", RequireAuth(verifier, http.HandlerFunc(handler.SubmitPicks)))
	mux.Handle("GET /v1/seasons/{season}/weeks/{week}/picks/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMyWeekPicks)))
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/admin/anonymous-picks/assign", RequireAdmin(verifier, http.HandlerFunc(handler.AssignAnonymousPicks)))
	mux.Handle("PUT /v1/admin/anonymous-picks/{pickID}/validation", RequireAdmin(verifier, http.HandlerFunc(handler.ValidateAnonymousPick)))
	mux.Handle("PUT /v1/admin/picks/{pickID}/visibility", RequireAdmin(verifier, http.HandlerFunc(handler.SetPickVisibility)))
	mux.Handle("PUT /v1/admin/users/{userID}/source-override", RequireAdmin(verifier, http.HandlerFunc(handler.SetSourceOverride)))
	mux.Handle("POST /v1/admin/users/{userID}/source-override/clear", RequireAdmin(verifier, http.HandlerFunc(handler.ClearSourceOverride)))
	mux.Handle("POST /v1/admin/seasons/{season}/weeks/{week}/rebuild", RequireAdmin(verifier, http.HandlerFunc(handler.RebuildWeek)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/sync-week", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncWeekJob)))
	mux.Handle("POST /v1/internal/jobs/recompute-week", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRecomputeWeekJob)))
	mux.Handle("POST /v1/internal/jobs/recompute-season", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRecomputeSeasonJob)))
}
