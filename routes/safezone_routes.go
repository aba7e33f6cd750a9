package routes

import (
	"raksha_server/controllers"
	"raksha_server/services"

	"github.com/gorilla/mux"
)

// RegisterSafeZoneRoutes sets up geofence and breach routes. The breaches
// listing registers before the parameterized zone lookup so it is not
// captured as a session code.
func RegisterSafeZoneRoutes(r *mux.Router, zones *services.SafeZoneService) {
	controller := controllers.NewSafeZoneController(zones)

	r.HandleFunc("/safe-zone/breaches", controller.ListBreaches).Methods("GET")
	r.HandleFunc("/safe-zone/breach", controller.Breach).Methods("POST")
	r.HandleFunc("/safe-zone", controller.CreateOrUpdate).Methods("POST")
	r.HandleFunc("/safe-zone", controller.Get).Methods("GET")
	r.HandleFunc("/safe-zone/{session}", controller.Get).Methods("GET")
}
