package lambdautils

import (
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showroom/apperrors"
)

func TestClaimsBag(t *testing.T) {
	t.Run("no authorizer", func(t *testing.T) {
		assert.Nil(t, ClaimsBag(events.APIGatewayV2HTTPRequest{}))
	})

	t.Run("jwt claims", func(t *testing.T) {
		event := events.APIGatewayV2HTTPRequest{
			RequestContext: events.APIGatewayV2HTTPRequestContext{
				Authorizer: &events.APIGatewayV2HTTPRequestContextAuthorizerDescription{
					JWT: &events.APIGatewayV2HTTPRequestContextAuthorizerJWTDescription{
						Claims: map[string]string{"sub": "user-1", "email": "user-1@example.com"},
					},
				},
			},
		}
		claims := ClaimsBag(event)
		assert.Equal(t, "user-1", claims["sub"])
		assert.Equal(t, "user-1@example.com", claims["email"])
	})

	t.Run("lambda authorizer context", func(t *testing.T) {
		event := events.APIGatewayV2HTTPRequest{
			RequestContext: events.APIGatewayV2HTTPRequestContext{
				Authorizer: &events.APIGatewayV2HTTPRequestContextAuthorizerDescription{
					Lambda: map[string]any{
						"sub":            "user-1",
						"cognito:groups": []any{"admin"},
					},
				},
			},
		}
		claims := ClaimsBag(event)
		assert.Equal(t, "user-1", claims["sub"])
		assert.Equal(t, []any{"admin"}, claims["cognito:groups"])
	})

	// JWT claims win when both authorizers populated the same key.
	t.Run("jwt overrides lambda", func(t *testing.T) {
		event := events.APIGatewayV2HTTPRequest{
			RequestContext: events.APIGatewayV2HTTPRequestContext{
				Authorizer: &events.APIGatewayV2HTTPRequestContextAuthorizerDescription{
					Lambda: map[string]any{"sub": "lambda-sub"},
					JWT: &events.APIGatewayV2HTTPRequestContextAuthorizerJWTDescription{
						Claims: map[string]string{"sub": "jwt-sub"},
					},
				},
			},
		}
		assert.Equal(t, "jwt-sub", ClaimsBag(event)["sub"])
	})

	t.Run("empty authorizer", func(t *testing.T) {
		event := events.APIGatewayV2HTTPRequest{
			RequestContext: events.APIGatewayV2HTTPRequestContext{
				Authorizer: &events.APIGatewayV2HTTPRequestContextAuthorizerDescription{},
			},
		}
		assert.Nil(t, ClaimsBag(event))
	})
}

func TestJSONResponse(t *testing.T) {
	response := JSONResponse(201, map[string]string{"bookingId": "b-1"})

	assert.Equal(t, 201, response.StatusCode)
	assert.Equal(t, "application/json", response.Headers["content-type"])
	assert.JSONEq(t, `{"bookingId":"b-1"}`, response.Body)
}

func TestErrorResponse(t *testing.T) {
	t.Run("taxonomy error", func(t *testing.T) {
		response := ErrorResponse(apperrors.SlotUnavailable("car-7", "2025-09-08T21:00:00Z"))

		assert.Equal(t, 409, response.StatusCode)
		assert.Contains(t, response.Body, `"error":"slot_unavailable"`)
	})

	t.Run("wrapped taxonomy error", func(t *testing.T) {
		wrapped := errors.Join(errors.New("outer"), apperrors.NotFound("booking"))
		response := ErrorResponse(wrapped)

		require.Equal(t, 404, response.StatusCode)
		assert.Contains(t, response.Body, `"error":"not_found"`)
	})

	t.Run("unclassified error", func(t *testing.T) {
		response := ErrorResponse(errors.New("boom"))

		assert.Equal(t, 500, response.StatusCode)
		assert.Contains(t, response.Body, `"error":"internal"`)
	})
}
