package http

import (
	"context"
	"net/http"
)

type tableKey struct{}

func withTable(r *http.Request, table string) context.Context {
	return context.WithValue(r.Context(), tableKey{}, table)
}

func tableFrom(r *http.Request) string {
	table, _ := r.Context().Value(tableKey{}).(string)
	return table
}
