package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/docs"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/handlers"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/middleware"
	"github.com/GovindaEkabote/Cricket-Score-Calculate/models"
)

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
}

func SetupRoutes(
	router *chi.Mux,
	opts Options,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	teamHandler *handlers.TeamHandler,
	matchHandler *handlers.MatchHandler,
	inningHandler *handlers.InningHandler,
	ballHandler *handlers.BallHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(opts.JWTSecret)
	adminOnly := middleware.Authorize(models.RoleAdmin)
	scorers := middleware.Authorize(models.RoleAdmin, models.RoleScorer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(docs.SwaggerJSON)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.With(authenticate).Get("/me", authHandler.Me)
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.ListTournaments)
		r.With(authenticate, adminOnly).Post("/", tournamentHandler.CreateTournament)

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", tournamentHandler.GetTournament)
			r.Get("/teams", teamHandler.ListTeams)
			r.Get("/matches", matchHandler.ListMatches)
			r.Get("/points-table", tournamentHandler.GetPointsTable)

			r.Group(func(r chi.Router) {
				r.Use(authenticate, adminOnly)
				r.Patch("/status", tournamentHandler.UpdateTournamentStatus)
				r.Post("/fixtures", tournamentHandler.GenerateFixtures)
				r.Post("/teams", teamHandler.CreateTeam)
				r.Post("/matches", matchHandler.CreateMatch)
				r.Post("/points-table/recompute", tournamentHandler.RecomputePointsTable)
			})
		})
	})

	router.Route("/teams/{teamID}", func(r chi.Router) {
		r.Get("/players", teamHandler.ListPlayers)
		r.With(authenticate, adminOnly).Post("/players", teamHandler.CreatePlayer)
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Get("/", matchHandler.GetMatch)
		r.Get("/playing-xi", matchHandler.GetPlayingXI)
		r.Get("/innings", inningHandler.ListMatchInnings)
		r.Get("/current-inning", inningHandler.GetCurrentInning)
		r.Get("/stats", matchHandler.GetMatchStats)
		r.Get("/scorecard", matchHandler.GetScorecard)

		// Ведение счёта
		r.Group(func(r chi.Router) {
			r.Use(authenticate, scorers)
			r.Post("/toss", matchHandler.RecordToss)
			r.Put("/playing-xi/{teamID}", matchHandler.SetPlayingXI)
			r.Post("/innings", inningHandler.StartInning)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate, adminOnly)
			r.Post("/complete", matchHandler.CompleteMatch)
			r.Post("/abandon", matchHandler.AbandonMatch)
			r.Put("/result", matchHandler.UpdateMatchResult)
			r.Post("/stats/rebuild", matchHandler.RebuildMatchStats)
			r.Post("/scorecard/archive", matchHandler.ArchiveScorecard)
			r.Delete("/scorecard/archive", matchHandler.DeleteScorecardArchive)
		})
	})

	router.Route("/innings/{inningID}", func(r chi.Router) {
		r.Get("/", inningHandler.GetInning)
		r.Get("/balls", ballHandler.ListBalls)
		r.Get("/current-over", ballHandler.GetCurrentOver)
		r.Get("/partners", ballHandler.GetBattingPartners)
		r.Get("/commentary", ballHandler.GetCommentary)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, scorers)
			r.Post("/complete", inningHandler.CompleteInning)
			r.Post("/balls", ballHandler.RecordBall)
			r.Delete("/balls/last", ballHandler.UndoLastBall)
		})
	})
}
