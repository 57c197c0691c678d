package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/textlab/textlab/internal/apa"
	"github.com/textlab/textlab/internal/auth"
	"github.com/textlab/textlab/internal/document"
	"github.com/textlab/textlab/internal/metrics"
	"github.com/textlab/textlab/internal/reference"
	"github.com/textlab/textlab/internal/storage"
)

type registerRequest struct {
	Email    string       `json:"email" binding:"required"`
	FullName string       `json:"full_name"`
	Password string       `json:"password" binding:"required"`
	Role     storage.Role `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	*auth.Token
	User *storage.User `json:"user"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := s.auth.Register(c.Request.Context(), req.Email, req.FullName, req.Password, req.Role)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (s *Server) loginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tok, u, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{Token: tok, User: u})
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (s *Server) createDocument(c *gin.Context) {
	var in document.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	doc, err := s.docs.Create(c.Request.Context(), currentUser(c), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (s *Server) listDocuments(c *gin.Context) {
	limit, err1 := queryInt(c, "limit")
	offset, err2 := queryInt(c, "offset")
	if err1 != nil || err2 != nil {
		respondError(c, http.StatusBadRequest, codeInvalidInput, "limit and offset must be non-negative integers")
		return
	}
	docs, err := s.docs.List(c.Request.Context(), currentUser(c), limit, offset)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs, "count": len(docs)})
}

func queryInt(c *gin.Context, name string) (int, error) {
	v := c.Query(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

func (s *Server) getDocument(c *gin.Context) {
	doc, err := s.docs.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) updateDocument(c *gin.Context) {
	var in document.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	doc, err := s.docs.Update(c.Request.Context(), currentUser(c), c.Param("id"), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) deleteDocument(c *gin.Context) {
	if err := s.docs.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type shareRequest struct {
	IsPublic *bool `json:"is_public" binding:"required"`
}

func (s *Server) shareDocument(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	doc, err := s.docs.Share(c.Request.Context(), currentUser(c), c.Param("id"), *req.IsPublic)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) listVersions(c *gin.Context) {
	versions, err := s.docs.Versions(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"versions": versions})
}

type citationRequest struct {
	CitationKey  string            `json:"citation_key"`
	CitationText string            `json:"citation_text"`
	Parsed       *reference.Parsed `json:"parsed"`
}

func (s *Server) addCitation(c *gin.Context) {
	var req citationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Parsed == nil && req.CitationText != "" {
		s.metrics.RecordEngineOp(metrics.OpParse)
	}
	cit, err := s.docs.AddCitation(c.Request.Context(), currentUser(c), c.Param("id"), req.CitationKey, req.CitationText, req.Parsed)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cit)
}

func (s *Server) listCitations(c *gin.Context) {
	cits, err := s.docs.Citations(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"citations": cits})
}

func (s *Server) deleteCitation(c *gin.Context) {
	if err := s.docs.DeleteCitation(c.Request.Context(), currentUser(c), c.Param("id"), c.Param("cid")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type referenceRequest struct {
	RefKey  string            `json:"ref_key"`
	RefText string            `json:"ref_text"`
	Parsed  *reference.Parsed `json:"parsed"`
}

func (s *Server) addReference(c *gin.Context) {
	var req referenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Parsed == nil && req.RefText != "" {
		s.metrics.RecordEngineOp(metrics.OpParse)
	}
	ref, err := s.docs.AddReference(c.Request.Context(), currentUser(c), c.Param("id"), req.RefKey, req.RefText, req.Parsed)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ref)
}

func (s *Server) listReferences(c *gin.Context) {
	refs, err := s.docs.References(c.Request.Context(), currentUser(c), c.Param("id"), c.Query("q"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"references": refs})
}

func (s *Server) deleteReference(c *gin.Context) {
	if err := s.docs.DeleteReference(c.Request.Context(), currentUser(c), c.Param("id"), c.Param("rid")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type generateRequest struct {
	References []reference.Parsed `json:"references"`
	Format     string             `json:"format"`
}

type referenceListResponse struct {
	ReferenceList string     `json:"reference_list"`
	Format        apa.Format `json:"format"`
	Count         int        `json:"count"`
}

func (s *Server) generateReferences(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if _, err := s.docs.Get(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}

	refs := make([]reference.Parsed, len(req.References))
	for i, p := range req.References {
		refs[i] = p.Normalize()
	}
	format := apa.ParseFormat(req.Format)
	s.metrics.RecordEngineOp(metrics.OpReferenceList)
	c.JSON(http.StatusOK, referenceListResponse{
		ReferenceList: s.docs.Engine().ReferenceList(refs, format),
		Format:        format,
		Count:         len(refs),
	})
}

func (s *Server) validateDocument(c *gin.Context) {
	report, err := s.docs.Validate(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.RecordEngineOp(metrics.OpValidate)
	s.metrics.RecordFindings(
		report.Summary.CitationsWithoutReference,
		report.Summary.ReferencesWithoutCitations,
		report.Summary.ImperfectMatches,
	)
	c.JSON(http.StatusOK, report)
}

func (s *Server) documentReferenceList(c *gin.Context) {
	format := apa.ParseFormat(c.Query("format"))
	list, n, err := s.docs.ReferenceList(c.Request.Context(), currentUser(c), c.Param("id"), format)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.RecordEngineOp(metrics.OpReferenceList)
	c.JSON(http.StatusOK, referenceListResponse{ReferenceList: list, Format: format, Count: n})
}

type parseRequest struct {
	RawText string `json:"raw_text" binding:"required"`
}

func (s *Server) parseReference(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.metrics.RecordEngineOp(metrics.OpParse)
	c.JSON(http.StatusOK, gin.H{"parsed": s.docs.Engine().Parse(req.RawText)})
}

func (s *Server) citation(c *gin.Context) {
	var p reference.Parsed
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	s.metrics.RecordEngineOp(metrics.OpCitation)
	c.JSON(http.StatusOK, gin.H{"citation": s.docs.Engine().Citation(p.Normalize())})
}
