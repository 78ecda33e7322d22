package controller

import (
	"encoding/json"
	"strconv"

	"github.com/farhansajid/visamock/internal/apperror"
	"github.com/farhansajid/visamock/internal/dto"
	"github.com/farhansajid/visamock/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
)

// RespondError maps a service error onto the uniform error body. 5xx
// details are logged, never leaked.
func RespondError(c *gin.Context, err error) {
	status := apperror.Status(err)
	if status >= 500 {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(status, dto.ErrorResponse{Error: "Internal server error"})
		return
	}
	c.JSON(status, dto.ErrorResponse{Error: apperror.Message(err)})
}

// ParseID parses a uint path parameter, responding 400 on failure.
func ParseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(400, dto.ErrorResponse{Error: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(id), true
}

// ParseQueryID parses a uint query parameter, responding 400 on failure.
func ParseQueryID(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(400, dto.ErrorResponse{Error: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(id), true
}

// ToInterviewResponse flattens an interview and its preloaded associations
// into the API shape.
func ToInterviewResponse(interview *model.Interview) dto.InterviewResponse {
	var resp dto.InterviewResponse
	if err := copier.Copy(&resp, interview); err != nil {
		log.Error().Err(err).Uint("interviewID", interview.ID).Msg("Interview response mapping failed")
	}
	if interview.Report != nil {
		report := ToReportResponse(interview.Report)
		resp.Report = &report
	}
	return resp
}

// ToReportResponse decodes the stored JSON columns so clients get arrays,
// not doubly encoded strings.
func ToReportResponse(report *model.InterviewReport) dto.ReportResponse {
	var resp dto.ReportResponse
	if err := copier.Copy(&resp, report); err != nil {
		log.Error().Err(err).Uint("interviewID", report.InterviewID).Msg("Report response mapping failed")
	}
	resp.AnalysisComplete = report.OverallScore != nil
	resp.GrammarMistakes = decodeJSONColumn(report.GrammarMistakes)
	resp.RedFlags = decodeJSONColumn(report.RedFlags)
	resp.ImprovementPlan = decodeJSONColumn(report.ImprovementPlan)
	resp.DetailedFeedback = decodeJSONColumn(report.DetailedFeedback)
	return resp
}

func decodeJSONColumn(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil
	}
	return decoded
}
