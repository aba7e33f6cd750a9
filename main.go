package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"raksha_server/config"
	"raksha_server/routes"
	"raksha_server/services"
	"raksha_server/socket"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	cfg := config.Load()

	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient(cfg.AWSRegion)
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// SMS sender: real Twilio gateway when configured, disabled otherwise
	var smsSender services.SMSSender
	if cfg.SMSConfigured() {
		smsSender = services.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
		log.Println("✅ Twilio SMS sender initialized")
	} else {
		log.Println("Twilio credentials not set — SMS disabled, alerts will still be stored")
	}

	// Initialize Services
	authService := services.NewAuthService(dynamoService, []byte(cfg.JWTSecret))
	sessionService := services.NewSessionService(dynamoService, cfg.SessionTTL)
	locationService := &services.LocationService{Dynamo: dynamoService, Sessions: sessionService}
	relationshipService := services.NewRelationshipService(dynamoService)
	alertService := services.NewAlertService(dynamoService, smsSender)

	// Realtime surface
	socketServer := socket.NewSocketServer(authService, locationService)
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("socket server error: %v", err)
		}
	}()
	defer socketServer.Close()

	safeZoneService := services.NewSafeZoneService(
		dynamoService,
		relationshipService,
		&socket.Broadcaster{Server: socketServer},
		alertService,
	)

	// Initialize the router
	r := mux.NewRouter()
	r.PathPrefix("/socket.io/").Handler(socketServer)

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "🚀 Raksha Backend is Running!")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}).Methods("GET")

	// Register routes
	routes.RegisterTrackRoutes(r, sessionService, locationService)
	routes.RegisterSafeZoneRoutes(r, safeZoneService)
	routes.RegisterRelationshipRoutes(r, relationshipService)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, corsHandler))
}
