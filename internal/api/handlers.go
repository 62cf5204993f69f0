package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/patdaburu/mothergeo/internal/entity"
	"github.com/patdaburu/mothergeo/internal/match"
	"github.com/patdaburu/mothergeo/internal/schema"
	"github.com/paulmach/orb/geojson"
)

// lockedBatch writes to a store without batches while the server's upload
// lock is held.
type lockedBatch struct {
	entity.DataStore
}

func (b lockedBatch) Rollback(ctx context.Context) error {
	if rb, ok := b.DataStore.(interface {
		Rollback(ctx context.Context) error
	}); ok {
		return rb.Rollback(ctx)
	}

	return nil
}

// begin returns the batch of one upload and the function that ends it.
func (s *Server) begin(ctx context.Context) (entity.Batch, func(), error) {
	if b, ok := s.store.(entity.Batcher); ok {
		batch, err := b.Begin(ctx)
		return batch, func() {}, err
	}

	s.mu.Lock()
	return lockedBatch{s.store}, s.mu.Unlock, nil
}

// GET /api/models
func ModelListHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		out := make([]modelSummary, 0, len(s.order))
		for _, key := range s.order {
			out = append(out, newModelSummary(s.models[key]))
		}
		c.JSON(http.StatusOK, out)
	}
}

// GET /api/models/:model
func ModelHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, ok := s.model(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, newModelDetail(m, c.Query("locale")))
	}
}

// GET /api/models/:model/relations/:relation?locale=ja_jp
func RelationHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		rel, ok := s.relation(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, newRelationDetail(rel, c.Query("locale")))
	}
}

// GET /api/models/:model/relations/:relation/ddl
func DDLHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		class, ok := s.class(c)
		if !ok {
			return
		}
		c.String(http.StatusOK, class.Table().CreateSQL()+"\n")
	}
}

// POST /api/models/:model/relations/:relation/features
//
// The body is a GeoJSON feature collection. Every feature is added to the
// store and committed once all of them have been accepted.
func FeaturesHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		class, ok := s.class(c)
		if !ok {
			return
		}

		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
			return
		}

		fc, err := geojson.UnmarshalFeatureCollection(body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid GeoJSON"})
			return
		}

		ctx := c.Request.Context()

		batch, release, err := s.begin(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer release()

		for i, f := range fc.Features {
			e, err := entity.FromFeature(class, f)
			if err == nil {
				err = batch.Add(ctx, e)
			}

			if err != nil {
				_ = batch.Rollback(ctx)
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("feature %d: %v", i, err)})
				return
			}
		}

		if err := batch.Commit(ctx); err != nil {
			_ = batch.Rollback(ctx)
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"added": len(fc.Features)})
	}
}

func (s *Server) model(c *gin.Context) (*schema.ModelInfo, bool) {
	m, ok := s.models[strings.ToLower(c.Param("model"))]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf(`model "%s" not found`, c.Param("model"))})
		return nil, false
	}

	return m, true
}

func (s *Server) relation(c *gin.Context) (*schema.FeatureTableInfo, bool) {
	m, ok := s.model(c)
	if !ok {
		return nil, false
	}

	rel, err := m.Relation(c.Param("relation"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}

	return rel, true
}

func (s *Server) class(c *gin.Context) (*entity.Class, bool) {
	rel, ok := s.relation(c)
	if !ok {
		return nil, false
	}

	class, err := s.factories[strings.ToLower(c.Param("model"))].Get(c.Request.Context(), rel)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return nil, false
	}

	return class, true
}

func statusForError(err error) int {
	var dtErr *entity.UnsupportedDataTypeError
	var geomErr *entity.UnsupportedGeometryError
	var matchErr *match.MatchError

	switch {
	case errors.As(err, &dtErr), errors.As(err, &geomErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &matchErr):
		return http.StatusConflict
	case errors.Is(err, entity.ErrNotFound), errors.Is(err, schema.ErrNotFound):
		return http.StatusNotFound
	}

	return http.StatusInternalServerError
}
