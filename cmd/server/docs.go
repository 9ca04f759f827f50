package main

//go:generate swag init -g cmd/server/main.go -o docs

// @title           Valora Back Office API
// @version         0.1.0
// @description     Valuation calculator sessions, lead pipeline and Fase 0 document workflow.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
