package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/jvasek/facemark/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	// Create handlers
	studentsHandler := handlers.NewStudentsHandler(s.manager)
	attendanceHandler := handlers.NewAttendanceHandler(s.manager, s.ledger)
	trainingHandler := handlers.NewTrainingHandler(s.coordinator)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Students
		r.Post("/students", studentsHandler.Register)
		r.Get("/students", studentsHandler.List)
		r.Get("/students/{registrationNo}", studentsHandler.Get)
		r.Put("/students/{registrationNo}", studentsHandler.Update)
		r.Delete("/students/{registrationNo}", studentsHandler.Delete)

		// Attendance
		r.Post("/attendance/mark", attendanceHandler.Mark)
		r.Get("/attendance", attendanceHandler.Fetch)
		r.Get("/attendance/by-date", attendanceHandler.FetchByDate)
		r.Get("/attendance/{registrationNo}", attendanceHandler.FetchByRegistration)

		// Training
		r.Get("/training/status", trainingHandler.Status)
	})
}
