package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emre/gatherly/internal/app/models"
	"github.com/emre/gatherly/internal/app/models/dto"
	"github.com/emre/gatherly/internal/app/services"
	"github.com/emre/gatherly/internal/middleware"
	"github.com/emre/gatherly/internal/pkg/helpers"
)

// ActivityController handles activity lifecycle and enrollment endpoints
type ActivityController struct {
	activityService   services.ActivityService
	enrollmentService services.EnrollmentService
}

// NewActivityController creates a new ActivityController
func NewActivityController(activityService services.ActivityService, enrollmentService services.EnrollmentService) *ActivityController {
	return &ActivityController{
		activityService:   activityService,
		enrollmentService: enrollmentService,
	}
}

func parseIDParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id < 1 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid ID parameter")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

func requireUserID(ctx *gin.Context) (int64, bool) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return userID, true
}

func parseActivityQuery(ctx *gin.Context) dto.ActivityQuery {
	page, pageSize := helpers.ParsePaginationParams(ctx)
	query := dto.ActivityQuery{
		Page:     page,
		PageSize: pageSize,
		Sort:     ctx.Query("sort"),
	}

	if categoryStr := ctx.Query("categoryId"); categoryStr != "" {
		if categoryID, err := strconv.ParseInt(categoryStr, 10, 64); err == nil {
			query.CategoryID = &categoryID
		}
	}
	if statusStr := ctx.Query("status"); statusStr != "" {
		status := models.ActivityStatus(statusStr)
		if status.IsValid() {
			query.Status = &status
		}
	}
	if feeStr := ctx.Query("feeType"); feeStr != "" {
		feeType := models.FeeType(feeStr)
		if feeType.IsValid() {
			query.FeeType = &feeType
		}
	}
	if keyword := ctx.Query("keyword"); keyword != "" {
		query.Keyword = &keyword
	}

	return query
}

// GetActivities handles listing activities with filters
// @Summary List activities
// @Description Retrieves activities with optional category/status/feeType/keyword filters and pagination. Statuses in the result reflect the current time.
// @Tags activities
// @Produce json
// @Param categoryId query int false "Filter by category ID"
// @Param status query string false "Filter by status" Enums(PREPARING, RECRUITING, REGISTRATION_CLOSED, ONGOING, FINISHED, CANCELLED)
// @Param feeType query string false "Filter by fee type" Enums(FREE, AA, PREPAID_ALL, PREPAID_REFUNDABLE)
// @Param keyword query string false "Keyword search in name and description"
// @Param sort query string false "Sort order" Enums(start_time, -start_time, created_at, -created_at)
// @Param page query int false "Page number (1-based)" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.ActivityListResponse} "Activities retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /activities [get]
func (c *ActivityController) GetActivities(ctx *gin.Context) {
	response, err := c.activityService.GetActivities(ctx, parseActivityQuery(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// GetActivityByID handles retrieving a single activity
// @Summary Get activity by ID
// @Description Retrieves an activity with its organizer, category, images and current enrolled count. The returned status reflects the current time.
// @Tags activities
// @Produce json
// @Param id path int true "Activity ID"
// @Success 200 {object} dto.APIResponse{data=dto.ActivityResponse} "Activity retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid activity ID"
// @Failure 404 {object} dto.ErrorResponse "Activity not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /activities/{id} [get]
func (c *ActivityController) GetActivityByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	response, err := c.activityService.GetActivityByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// GetCategories handles listing activity categories
// @Summary List categories
// @Description Retrieves all activity categories
// @Tags activities
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.CategoryResponse} "Categories retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /activities/categories [get]
func (c *ActivityController) GetCategories(ctx *gin.Context) {
	response, err := c.activityService.GetCategories(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// CreateActivity handles activity creation
// @Summary Create activity
// @Description Creates a new activity organized by the caller. The activity starts in PREPARING status.
// @Tags activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateActivityRequest true "Activity details"
// @Success 201 {object} dto.APIResponse{data=dto.ActivityResponse} "Activity created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid schedule or request body"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Category not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /activities [post]
func (c *ActivityController) CreateActivity(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req dto.CreateActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	response, err := c.activityService.CreateActivity(ctx, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(response))
}

// UpdateActivity handles partial activity updates
// @Summary Update activity
// @Description Updates an activity. Only the organizer or an admin may update, and only before the activity starts.
// @Tags activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID"
// @Param request body dto.UpdateActivityRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.ActivityResponse} "Activity updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Activity not editable or invalid fields"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not the organizer"
// @Failure 404 {object} dto.ErrorResponse "Activity not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /activities/{id} [put]
func (c *ActivityController) UpdateActivity(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	var req dto.UpdateActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	response, err := c.activityService.UpdateActivity(ctx, id, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// SetStatus handles a manual status change
// @Summary Change activity status
// @Description Sets the activity status. CANCELLED and FINISHED are terminal; cancelling also cancels all enrollments.
// @Tags activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID"
// @Param request body dto.UpdateStatusRequest true "Target status"
// @Success 200 {object} dto.APIResponse{data=dto.ActivityResponse} "Status updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid or terminal transition"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not the organizer"
// @Failure 404 {object} dto.ErrorResponse "Activity not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /activities/{id}/status [post]
func (c *ActivityController) SetStatus(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	response, err := c.activityService.SetStatus(ctx, id, userID, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// CancelActivity handles the organizer cancelling an activity
// @Summary Cancel activity
// @Description Cancels an activity before it starts and cancels all of its enrollments
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID"
// @Success 200 {object} dto.APIResponse "Activity cancelled successfully"
// @Failure 400 {object} dto.ErrorResponse "Activity can no longer be cancelled"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not the organizer"
// @Failure 404 {object} dto.ErrorResponse "Activity not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /activities/{id}/cancel [post]
func (c *ActivityController) CancelActivity(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	if err := c.activityService.CancelActivity(ctx, id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Activity cancelled"))
}

// GetMyActivities handles listing the caller's organized activities
// @Summary List my activities
// @Description Retrieves the activities organized by the caller
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.ActivityListResponse} "Activities retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /activities/my [get]
func (c *ActivityController) GetMyActivities(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	response, err := c.activityService.GetMyActivities(ctx, userID, parseActivityQuery(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// GetMyEnrolledActivities handles listing activities the caller joined
// @Summary List my enrolled activities
// @Description Retrieves the activities the caller is actively enrolled in
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.ActivityListResponse} "Activities retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /activities/enrolled [get]
func (c *ActivityController) GetMyEnrolledActivities(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	response, err := c.activityService.GetMyEnrolledActivities(ctx, userID, parseActivityQuery(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// GetActivityEnrollments handles listing the participants of an activity
// @Summary List activity enrollments
// @Description Retrieves the active participants of an activity in enrollment order
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.EnrollmentResponse} "Enrollments retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Activity not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /activities/{id}/enrollments [get]
func (c *ActivityController) GetActivityEnrollments(ctx *gin.Context) {
	id, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	response, err := c.activityService.GetActivityEnrollments(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// Enroll handles a user joining an activity
// @Summary Enroll in activity
// @Description Enrolls the caller into a recruiting activity. Fails when the activity is full, closed or already joined.
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID"
// @Success 201 {object} dto.APIResponse{data=dto.EnrollmentResponse} "Enrolled successfully"
// @Failure 400 {object} dto.ErrorResponse "Activity full, closed or past its deadline"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Activity not found"
// @Failure 409 {object} dto.ErrorResponse "Already enrolled"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /activities/{id}/enroll [post]
func (c *ActivityController) Enroll(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	response, err := c.enrollmentService.Enroll(ctx, id, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(response))
}

// CancelEnrollment handles a user leaving an activity
// @Summary Cancel enrollment
// @Description Cancels the caller's active enrollment. The slot becomes available again.
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID"
// @Success 200 {object} dto.APIResponse "Enrollment cancelled successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "No active enrollment"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /activities/{id}/enroll [delete]
func (c *ActivityController) CancelEnrollment(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	if err := c.enrollmentService.CancelEnrollment(ctx, id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Enrollment cancelled"))
}

// AdminGetActivities handles the admin activity list
// @Summary List activities (admin)
// @Description Retrieves all activities regardless of status, with the same filters as the public list
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.ActivityListResponse} "Activities retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/activities [get]
func (c *ActivityController) AdminGetActivities(ctx *gin.Context) {
	response, err := c.activityService.GetActivities(ctx, parseActivityQuery(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// AdminDeleteActivity handles hard deletion of an activity
// @Summary Delete activity (admin)
// @Description Permanently deletes an activity together with its enrollments, images and comments
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID"
// @Success 200 {object} dto.APIResponse "Activity deleted successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Activity not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/activities/{id} [delete]
func (c *ActivityController) AdminDeleteActivity(ctx *gin.Context) {
	id, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	if err := c.activityService.DeleteActivityAsAdmin(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Activity deleted"))
}

// AdminSetStatus handles an admin status change
// @Summary Change activity status (admin)
// @Description Sets the activity status without an ownership check. Terminal-state rules still apply.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID"
// @Param request body dto.UpdateStatusRequest true "Target status"
// @Success 200 {object} dto.APIResponse{data=dto.ActivityResponse} "Status updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid or terminal transition"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Activity not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/activities/{id}/status [post]
func (c *ActivityController) AdminSetStatus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	response, err := c.activityService.SetStatusAsAdmin(ctx, id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// AdminCancelActivity handles an admin cancelling an activity
// @Summary Cancel activity (admin)
// @Description Cancels any non-terminal activity, even after it has started, and cancels all of its enrollments
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID"
// @Success 200 {object} dto.APIResponse "Activity cancelled successfully"
// @Failure 400 {object} dto.ErrorResponse "Activity already finished or cancelled"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Activity not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/activities/{id}/cancel [post]
func (c *ActivityController) AdminCancelActivity(ctx *gin.Context) {
	id, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	if err := c.activityService.CancelActivityAsAdmin(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Activity cancelled"))
}
