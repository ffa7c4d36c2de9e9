package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront-functions/internal/repositories"
	"storefront-functions/internal/services"
	"storefront-functions/pkg/lambda"
)

// errorEnvelope maps a service error onto a status and body. invalidStatus
// is the status used for rejected input, which differs between resources.
func errorEnvelope(err error, invalidStatus int) (int, Envelope) {
	var repoErr *repositories.RepositoryError

	switch {
	case services.IsUnauthenticated(err):
		return http.StatusForbidden, ErrorMessage("No User")
	case services.IsInvalidArgument(err):
		return invalidStatus, ErrorMessage(err.Error())
	case services.IsNotFound(err):
		return http.StatusNotFound, ErrorMessage(err.Error())
	case errors.As(err, &repoErr):
		return http.StatusInternalServerError, ErrorCode(repositories.Code(err))
	default:
		return http.StatusInternalServerError, ErrorMessage(err.Error())
	}
}

// malformedBody marks a request body that could not be decoded
func malformedBody(err error) error {
	return fmt.Errorf("%w: malformed request body: %v", services.ErrInvalidArgument, err)
}

// result is the outcome of a core handler path
type result struct {
	status   int
	envelope Envelope
}

func ok(v interface{}) result {
	return result{status: http.StatusOK, envelope: OK(v)}
}

func failed(err error, invalidStatus int, logger *logrus.Logger) result {
	status, env := errorEnvelope(err, invalidStatus)
	if status >= http.StatusInternalServerError {
		logger.WithError(err).Error("Request failed")
	} else {
		logger.WithError(err).Debug("Request rejected")
	}
	return result{status: status, envelope: env}
}

func (r result) gin(c *gin.Context) {
	c.JSON(r.status, r.envelope)
}

func (r result) lambda() (*lambda.Response, error) {
	return lambda.JSON(r.status, r.envelope)
}

// queryParam returns a pointer to the named query value, nil when absent
func queryParam(req *lambda.Request, name string) *string {
	if v, ok := req.Query(name); ok {
		return &v
	}
	return nil
}

func ginQueryParam(c *gin.Context, name string) *string {
	if v, ok := c.GetQuery(name); ok {
		return &v
	}
	return nil
}
