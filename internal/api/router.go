// Package api serves model metadata, table definitions and feature uploads
// over HTTP.
package api

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/patdaburu/mothergeo/internal/entity"
	"github.com/patdaburu/mothergeo/internal/schema"
)

// Server holds the parsed models by lowercased name and one factory per
// model, so that relations of different models never share a class.
type Server struct {
	models    map[string]*schema.ModelInfo
	factories map[string]*entity.Factory
	order     []string
	store     entity.DataStore

	// mu serializes uploads to stores that can't run batches concurrently.
	mu sync.Mutex
}

// NewServer serves models. Their classes are made in store with opts.
func NewServer(models []*schema.ModelInfo, store entity.DataStore, opts ...entity.Option) (*Server, error) {
	s := &Server{
		models:    make(map[string]*schema.ModelInfo, len(models)),
		factories: make(map[string]*entity.Factory, len(models)),
		store:     store,
	}

	for _, m := range models {
		key := strings.ToLower(m.Name)
		if _, ok := s.models[key]; ok {
			return nil, fmt.Errorf(`failed to serve model "%s": %w`, m.Name, &schema.DuplicateNameError{Kind: "model", Name: m.Name})
		}

		f, err := entity.NewFactory(store, opts...)
		if err != nil {
			return nil, err
		}

		s.order = append(s.order, key)
		s.models[key] = m
		s.factories[key] = f
	}

	return s, nil
}

func NewRouter(s *Server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/models", ModelListHandler(s))
		api.GET("/models/:model", ModelHandler(s))
		api.GET("/models/:model/relations/:relation", RelationHandler(s))
		api.GET("/models/:model/relations/:relation/ddl", DDLHandler(s))
		api.POST("/models/:model/relations/:relation/features", FeaturesHandler(s))
	}

	return r
}

func RunServer(addr string, s *Server) error {
	return NewRouter(s).Run(addr)
}
