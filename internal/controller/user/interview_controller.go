package user

import (
	"net/http"

	"github.com/farhansajid/visamock/internal/controller"
	"github.com/farhansajid/visamock/internal/dto"
	"github.com/farhansajid/visamock/internal/middleware"
	"github.com/farhansajid/visamock/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type InterviewController struct {
	interviewSvc service.InterviewService
	reportSvc    service.ReportService
}

func NewInterviewController(interviewSvc service.InterviewService, reportSvc service.ReportService) *InterviewController {
	return &InterviewController{interviewSvc: interviewSvc, reportSvc: reportSvc}
}

// CreateInterview godoc
// @Summary Create a new mock interview
// @Description Admits a new interview session. Requires a balance of at least 10 credits; nothing is debited until the interview completes.
// @Tags interviews
// @Accept json
// @Produce json
// @Param interview body dto.CreateInterviewRequest true "Country and visa type"
// @Success 201 {object} dto.InterviewResponse
// @Failure 400 {object} dto.ErrorResponse "Insufficient credits or invalid catalog reference"
// @Failure 401 {object} dto.ErrorResponse
// @Router /interviews [post]
// @Security BearerAuth
func (ctrl *InterviewController) CreateInterview(c *gin.Context) {
	var req dto.CreateInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	interview, err := ctrl.interviewSvc.Create(middleware.UserID(c), req.CountryID, req.VisaTypeID, req.Name)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, controller.ToInterviewResponse(interview))
}

// StartInterview godoc
// @Summary Start a pending interview
// @Description Transitions the interview to in_progress and returns the voice session credentials.
// @Tags interviews
// @Produce json
// @Param id path int true "Interview ID"
// @Success 200 {object} dto.StartSessionResponse
// @Failure 400 {object} dto.ErrorResponse "Interview is not pending"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /interviews/{id}/start [post]
// @Security BearerAuth
func (ctrl *InterviewController) StartInterview(c *gin.Context) {
	id, ok := controller.ParseID(c, "id")
	if !ok {
		return
	}

	session, err := ctrl.interviewSvc.Start(id, middleware.UserID(c))
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StartSessionResponse{
		InterviewID: session.InterviewID,
		PublicKey:   session.PublicKey,
		AssistantID: session.AssistantID,
	})
}

// AttachCall godoc
// @Summary Attach the voice call to an interview
// @Description Records the vendor call ID once the browser has established the session.
// @Tags interviews
// @Accept json
// @Produce json
// @Param id path int true "Interview ID"
// @Param call body dto.AttachCallRequest true "Vendor call ID"
// @Success 204 "No Content"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /interviews/{id}/call [post]
// @Security BearerAuth
func (ctrl *InterviewController) AttachCall(c *gin.Context) {
	id, ok := controller.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.AttachCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if err := ctrl.interviewSvc.AttachCall(id, middleware.UserID(c), req.CallID); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// FinalizeInterview godoc
// @Summary Finalize an interview after the call ends
// @Description Fetches the terminal call record from the voice vendor, settles the interview status, debits credits on completion, and kicks off report synthesis.
// @Tags interviews
// @Produce json
// @Param id path int true "Interview ID"
// @Success 200 {object} dto.InterviewResponse
// @Failure 400 {object} dto.ErrorResponse "No call attached"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse "Voice vendor unavailable"
// @Router /interviews/{id}/finalize [post]
// @Security BearerAuth
func (ctrl *InterviewController) FinalizeInterview(c *gin.Context) {
	id, ok := controller.ParseID(c, "id")
	if !ok {
		return
	}

	interview, err := ctrl.interviewSvc.Finalize(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, controller.ToInterviewResponse(interview))
}

// ListInterviews godoc
// @Summary List the caller's interviews
// @Tags interviews
// @Produce json
// @Success 200 {array} dto.InterviewResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /interviews [get]
// @Security BearerAuth
func (ctrl *InterviewController) ListInterviews(c *gin.Context) {
	interviews, err := ctrl.interviewSvc.List(middleware.UserID(c))
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	responses := make([]dto.InterviewResponse, 0, len(interviews))
	for i := range interviews {
		responses = append(responses, controller.ToInterviewResponse(&interviews[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// GetInterview godoc
// @Summary Get one interview with its report
// @Tags interviews
// @Produce json
// @Param id path int true "Interview ID"
// @Success 200 {object} dto.InterviewResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /interviews/{id} [get]
// @Security BearerAuth
func (ctrl *InterviewController) GetInterview(c *gin.Context) {
	id, ok := controller.ParseID(c, "id")
	if !ok {
		return
	}

	interview, err := ctrl.interviewSvc.Get(id, middleware.UserID(c))
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, controller.ToInterviewResponse(interview))
}

// AnalyzeInterview godoc
// @Summary Re-run report synthesis
// @Description Regenerates the analysis report for a completed interview. Synthesis runs in the background; poll the report endpoint for the result.
// @Tags interviews
// @Produce json
// @Param id path int true "Interview ID"
// @Success 202 "Accepted"
// @Failure 400 {object} dto.ErrorResponse "Interview is not completed"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /interviews/{id}/analyze [post]
// @Security BearerAuth
func (ctrl *InterviewController) AnalyzeInterview(c *gin.Context) {
	id, ok := controller.ParseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.interviewSvc.Analyze(id, middleware.UserID(c)); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// GetMedia godoc
// @Summary Get the call recording and transcript
// @Description Fetches the recording URL and transcript from the voice vendor. Waits briefly if the recording is still processing.
// @Tags interviews
// @Produce json
// @Param id path int true "Interview ID"
// @Success 200 {object} dto.MediaResponse
// @Failure 400 {object} dto.ErrorResponse "No call attached"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /interviews/{id}/media [get]
// @Security BearerAuth
func (ctrl *InterviewController) GetMedia(c *gin.Context) {
	id, ok := controller.ParseID(c, "id")
	if !ok {
		return
	}

	media, err := ctrl.interviewSvc.Media(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MediaResponse{
		RecordingURL: media.RecordingURL,
		Transcript:   media.Transcript,
		Messages:     media.Messages,
		Duration:     media.Duration,
		EndedReason:  media.EndedReason,
	})
}

// GetReport godoc
// @Summary Get the interview's analysis report
// @Description Returns the report for a finalized interview. With wait=true the request blocks until synthesis publishes the report or the wait budget runs out.
// @Tags interviews
// @Produce json
// @Param id path int true "Interview ID"
// @Param wait query bool false "Block until the report is ready"
// @Success 200 {object} dto.ReportResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "No report yet"
// @Router /interviews/{id}/report [get]
// @Security BearerAuth
func (ctrl *InterviewController) GetReport(c *gin.Context) {
	id, ok := controller.ParseID(c, "id")
	if !ok {
		return
	}
	userID := middleware.UserID(c)

	wait := c.DefaultQuery("wait", "false") == "true"
	if wait {
		report, err := ctrl.reportSvc.Wait(c.Request.Context(), id, userID)
		if err != nil {
			controller.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, controller.ToReportResponse(report))
		return
	}

	report, err := ctrl.reportSvc.Get(id, userID)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	log.Debug().Uint("interviewID", id).Msg("Report served")
	c.JSON(http.StatusOK, controller.ToReportResponse(report))
}
