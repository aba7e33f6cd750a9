package routes

import (
	"raksha_server/controllers"
	"raksha_server/services"

	"github.com/gorilla/mux"
)

// RegisterRelationshipRoutes sets up the permission-graph routes.
func RegisterRelationshipRoutes(r *mux.Router, relationships *services.RelationshipService) {
	controller := controllers.NewRelationshipController(relationships)

	relRouter := r.PathPrefix("/relationship").Subrouter()
	relRouter.HandleFunc("/request", controller.Request).Methods("POST")
	relRouter.HandleFunc("/respond", controller.Respond).Methods("POST")
	relRouter.HandleFunc("/list", controller.List).Methods("GET")
	relRouter.HandleFunc("/for-user", controller.ForUser).Methods("GET")
	relRouter.HandleFunc("/{id}", controller.Delete).Methods("DELETE")
}
