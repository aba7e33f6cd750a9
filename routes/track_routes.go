package routes

import (
	"raksha_server/controllers"
	"raksha_server/services"

	"github.com/gorilla/mux"
)

// RegisterTrackRoutes sets up session and location routes.
func RegisterTrackRoutes(r *mux.Router, sessions *services.SessionService, locations *services.LocationService) {
	controller := controllers.NewTrackController(sessions, locations)

	r.HandleFunc("/create-session", controller.CreateSession).Methods("POST")
	r.HandleFunc("/join-session", controller.JoinSession).Methods("POST")
	r.HandleFunc("/store-coordinates", controller.StoreCoordinates).Methods("POST")
	r.HandleFunc("/find-companion", controller.FindCompanion).Methods("POST")
}
