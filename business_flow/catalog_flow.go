// Package businessflow contains the core business logic and use cases for catalog workflows
package businessflow

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/openlearnhq/enterprise-catalog/app/dto"
	"github.com/openlearnhq/enterprise-catalog/app/services"
	"github.com/openlearnhq/enterprise-catalog/config"
	"github.com/openlearnhq/enterprise-catalog/models"
	"github.com/openlearnhq/enterprise-catalog/repository"
	"github.com/openlearnhq/enterprise-catalog/utils"
)

// CatalogFlow handles the enterprise catalog business logic
type CatalogFlow interface {
	CreateCatalog(ctx context.Context, req *dto.CreateEnterpriseCatalogRequest) (*dto.EnterpriseCatalogResponse, error)
	UpdateCatalog(ctx context.Context, req *dto.UpdateEnterpriseCatalogRequest) (*dto.EnterpriseCatalogResponse, error)
	GetCatalog(ctx context.Context, catalogUUID string) (*dto.EnterpriseCatalogResponse, error)
	GetCatalogContent(ctx context.Context, req *dto.GetCatalogContentRequest) (*dto.CatalogContentResponse, error)
}

// CatalogFlowImpl implements the enterprise catalog business flow
type CatalogFlowImpl struct {
	catalogRepo      repository.EnterpriseCatalogRepository
	metadataRepo     repository.ContentMetadataRepository
	queryFlow        CatalogQueryFlow
	enterpriseAPI    services.EnterpriseAPIService
	enterpriseConfig *config.EnterpriseConfig
}

// NewCatalogFlow creates a new catalog flow instance
func NewCatalogFlow(
	catalogRepo repository.EnterpriseCatalogRepository,
	metadataRepo repository.ContentMetadataRepository,
	queryFlow CatalogQueryFlow,
	enterpriseAPI services.EnterpriseAPIService,
	enterpriseConfig *config.EnterpriseConfig,
) CatalogFlow {
	return &CatalogFlowImpl{
		catalogRepo:      catalogRepo,
		metadataRepo:     metadataRepo,
		queryFlow:        queryFlow,
		enterpriseAPI:    enterpriseAPI,
		enterpriseConfig: enterpriseConfig,
	}
}

// CreateCatalog resolves the request's content filter to a catalog
// query and creates a catalog owned by it
func (s *CatalogFlowImpl) CreateCatalog(ctx context.Context, req *dto.CreateEnterpriseCatalogRequest) (*dto.EnterpriseCatalogResponse, error) {
	enterpriseUUID, err := utils.ParseUUID(req.EnterpriseCustomer)
	if err != nil {
		return nil, NewBusinessError("ENTERPRISE_UUID_INVALID", "Invalid enterprise customer UUID", ErrEnterpriseUUIDInvalid)
	}

	var queryUUID *uuid.UUID
	if req.CatalogQueryUUID != nil {
		parsed, err := utils.ParseUUID(*req.CatalogQueryUUID)
		if err != nil {
			return nil, NewBusinessError("CATALOG_QUERY_UUID_INVALID", "Invalid catalog query UUID", err)
		}
		queryUUID = &parsed
	}

	catalogQuery, err := s.queryFlow.FindAndModifyCatalogQuery(
		ctx,
		req.ContentFilter,
		queryUUID,
		req.QueryTitle,
		utils.IsTrue(req.IncludeExecEd2UCourses),
	)
	if err != nil {
		return nil, err
	}

	catalog := models.EnterpriseCatalog{
		Title:                      req.Title,
		EnterpriseUUID:             enterpriseUUID,
		EnterpriseName:             req.EnterpriseCustomerName,
		CatalogQueryID:             catalogQuery.ID,
		EnabledCourseModes:         models.StringList(req.EnabledCourseModes),
		PublishAuditEnrollmentURLs: req.PublishAuditEnrollmentURLs,
	}
	if req.UUID != nil {
		catalogUUID, err := utils.ParseUUID(*req.UUID)
		if err != nil {
			return nil, NewBusinessError("CATALOG_UUID_INVALID", "Invalid catalog UUID", err)
		}
		catalog.UUID = catalogUUID
	}

	if err := s.catalogRepo.Save(ctx, &catalog); err != nil {
		log.Printf("Encountered the following error creating enterprise catalog: %v | content_filter: %v | catalog_query id: %d",
			err, req.ContentFilter, catalogQuery.ID)
		return nil, NewBusinessError("CATALOG_CREATE_FAILED", "Failed to create enterprise catalog", err)
	}
	catalog.CatalogQuery = catalogQuery

	return s.catalogResponse(ctx, &catalog)
}

// UpdateCatalog re-resolves the catalog's query from the request,
// defaulting missing query fields to the current query's values
func (s *CatalogFlowImpl) UpdateCatalog(ctx context.Context, req *dto.UpdateEnterpriseCatalogRequest) (*dto.EnterpriseCatalogResponse, error) {
	catalogUUID, err := utils.ParseUUID(req.UUID)
	if err != nil {
		return nil, NewBusinessError("CATALOG_UUID_INVALID", "Invalid catalog UUID", err)
	}

	catalog, err := s.catalogRepo.ByUUID(ctx, catalogUUID)
	if err != nil {
		return nil, NewBusinessError("CATALOG_LOOKUP_FAILED", "Failed to lookup enterprise catalog", err)
	}
	if catalog == nil {
		return nil, NewBusinessError("CATALOG_NOT_FOUND", "Enterprise catalog not found", ErrCatalogNotFound)
	}

	// Default query parameters from the catalog's current query
	var contentFilter models.JSONMap
	var queryTitle *string
	var queryUUID *uuid.UUID
	includeExecEd2UCourses := false
	if catalog.CatalogQuery != nil {
		contentFilter = catalog.CatalogQuery.ContentFilter
		queryTitle = catalog.CatalogQuery.Title
		currentUUID := catalog.CatalogQuery.UUID
		queryUUID = &currentUUID
		includeExecEd2UCourses = catalog.CatalogQuery.IncludeExecEd2UCourses
	}

	if req.ContentFilter != nil {
		contentFilter = req.ContentFilter
	}
	if req.QueryTitle != nil {
		queryTitle = req.QueryTitle
	}
	if req.CatalogQueryUUID != nil {
		parsed, err := utils.ParseUUID(*req.CatalogQueryUUID)
		if err != nil {
			return nil, NewBusinessError("CATALOG_QUERY_UUID_INVALID", "Invalid catalog query UUID", err)
		}
		queryUUID = &parsed
	}
	if req.IncludeExecEd2UCourses != nil {
		includeExecEd2UCourses = *req.IncludeExecEd2UCourses
	}

	catalogQuery, err := s.queryFlow.FindAndModifyCatalogQuery(ctx, contentFilter, queryUUID, queryTitle, includeExecEd2UCourses)
	if err != nil {
		return nil, err
	}

	catalog.CatalogQueryID = catalogQuery.ID
	if req.Title != nil {
		catalog.Title = *req.Title
	}
	if req.EnterpriseCustomerName != nil {
		catalog.EnterpriseName = *req.EnterpriseCustomerName
	}
	if req.EnabledCourseModes != nil {
		catalog.EnabledCourseModes = models.StringList(req.EnabledCourseModes)
	}
	if req.PublishAuditEnrollmentURLs != nil {
		catalog.PublishAuditEnrollmentURLs = *req.PublishAuditEnrollmentURLs
	}

	if err := s.catalogRepo.Update(ctx, *catalog); err != nil {
		return nil, NewBusinessError("CATALOG_UPDATE_FAILED", "Failed to update enterprise catalog", err)
	}
	catalog.CatalogQuery = catalogQuery

	return s.catalogResponse(ctx, catalog)
}

// GetCatalog returns the catalog detail representation
func (s *CatalogFlowImpl) GetCatalog(ctx context.Context, rawUUID string) (*dto.EnterpriseCatalogResponse, error) {
	catalogUUID, err := utils.ParseUUID(rawUUID)
	if err != nil {
		return nil, NewBusinessError("CATALOG_UUID_INVALID", "Invalid catalog UUID", err)
	}

	catalog, err := s.catalogRepo.ByUUID(ctx, catalogUUID)
	if err != nil {
		return nil, NewBusinessError("CATALOG_LOOKUP_FAILED", "Failed to lookup enterprise catalog", err)
	}
	if catalog == nil {
		return nil, NewBusinessError("CATALOG_NOT_FOUND", "Enterprise catalog not found", ErrCatalogNotFound)
	}

	return s.catalogResponse(ctx, catalog)
}

// GetCatalogContent lists the content metadata under the catalog's
// query, each record enriched with derived URLs and identifiers
func (s *CatalogFlowImpl) GetCatalogContent(ctx context.Context, req *dto.GetCatalogContentRequest) (*dto.CatalogContentResponse, error) {
	catalogUUID, err := utils.ParseUUID(req.UUID)
	if err != nil {
		return nil, NewBusinessError("CATALOG_UUID_INVALID", "Invalid catalog UUID", err)
	}

	catalog, err := s.catalogRepo.ByUUID(ctx, catalogUUID)
	if err != nil {
		return nil, NewBusinessError("CATALOG_LOOKUP_FAILED", "Failed to lookup enterprise catalog", err)
	}
	if catalog == nil {
		return nil, NewBusinessError("CATALOG_NOT_FOUND", "Enterprise catalog not found", ErrCatalogNotFound)
	}

	pagination := Pagination{Page: req.Page, PageSize: req.PageSize}
	pagination.Normalize(utils.DefaultContentPageSize, utils.MaxContentPageSize)

	count, err := s.metadataRepo.CountByCatalogQuery(ctx, catalog.CatalogQueryID)
	if err != nil {
		return nil, NewBusinessError("CATALOG_CONTENT_COUNT_FAILED", "Failed to count catalog content", err)
	}

	records, err := s.metadataRepo.ListByCatalogQuery(ctx, catalog.CatalogQueryID, pagination.PageSize, pagination.Offset())
	if err != nil {
		return nil, NewBusinessError("CATALOG_CONTENT_LIST_FAILED", "Failed to list catalog content", err)
	}

	customerModified := s.customerLastModified(ctx, catalog.EnterpriseUUID)

	results := make([]map[string]any, 0, len(records))
	for _, record := range records {
		enriched, err := s.EnrichContentMetadata(ctx, record, catalog, customerModified)
		if err != nil {
			return nil, err
		}
		results = append(results, enriched)
	}

	return &dto.CatalogContentResponse{
		Count:    count,
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
		Results:  results,
	}, nil
}

// EnrichContentMetadata returns a copy of the record's raw metadata
// with derived fields attached. The stored record is never mutated.
//
// The enrollment URL of content metadata is generated on request and is
// determined by the state of the enterprise customer as well as the
// catalog, so content_last_modified has to reflect the freshest of all
// three change sources.
func (s *CatalogFlowImpl) EnrichContentMetadata(ctx context.Context, record *models.ContentMetadata, catalog *models.EnterpriseCatalog, customerModified *time.Time) (models.JSONMap, error) {
	jsonMetadata, err := record.JSONMetadata.DeepCopy()
	if err != nil {
		return nil, NewBusinessError("CONTENT_METADATA_COPY_FAILED", "Failed to copy content metadata", err)
	}
	if jsonMetadata == nil {
		jsonMetadata = models.JSONMap{}
	}

	recordModified := record.Modified()
	catalogModified := catalog.Modified()
	jsonMetadata["content_last_modified"] = utils.MostRecentModifiedTime(&recordModified, &catalogModified, customerModified)

	if marketingURL := record.MarketingURL(); marketingURL != "" {
		tagged, err := utils.UpdateQueryParameters(marketingURL, utils.EnterpriseUTMContext(catalog.EnterpriseName))
		if err != nil {
			log.Printf("Failed to tag marketing url for %s: %v", record.ContentKey, err)
		} else {
			jsonMetadata["marketing_url"] = tagged
		}
	}

	contentKey := jsonMetadata.GetString("key")

	switch record.ContentType {
	case models.ContentTypeCourse, models.ContentTypeCourseRun:
		jsonMetadata["enrollment_url"] = s.contentEnrollmentURL(catalog, record.ContentKey)
		jsonMetadata["xapi_activity_id"] = s.xapiActivityID(record.ContentType.String(), contentKey)

		if record.ContentType == models.ContentTypeCourse {
			serializedRuns, _ := jsonMetadata["course_runs"].([]any)
			jsonMetadata["active"] = utils.IsAnyCourseRunActive(serializedRuns)
			// Enrollment fulfillment for exec-ed-2u content is
			// controlled via entitlements tied directly to courses, so
			// its nested runs carry no enrollment URL.
			if !record.IsExecEd2UCourse() {
				if err := s.addCourseRunEnrollmentURLs(ctx, record, catalog, serializedRuns); err != nil {
					return nil, err
				}
			}
		}
	case models.ContentTypeProgram:
		// There is no notion of directly enrolling in a program.
		jsonMetadata["enrollment_url"] = nil
	}

	return jsonMetadata, nil
}

// addCourseRunEnrollmentURLs computes the enrollment url for each child
// course run and attaches it to the run's serialized representation.
// The key to URL mapping is built once so N runs cost one child lookup,
// not N.
func (s *CatalogFlowImpl) addCourseRunEnrollmentURLs(ctx context.Context, course *models.ContentMetadata, catalog *models.EnterpriseCatalog, serializedRuns []any) error {
	children, err := s.metadataRepo.ChildRecords(ctx, course.ContentKey)
	if err != nil {
		return NewBusinessError("COURSE_RUN_LOOKUP_FAILED", "Failed to lookup course runs", err)
	}

	urlsByCourseRunKey := make(map[string]string, len(children))
	for _, courseRun := range children {
		urlsByCourseRunKey[courseRun.ContentKey] = s.contentEnrollmentURL(catalog, courseRun.ContentKey)
	}

	for _, raw := range serializedRuns {
		run, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		runKey, _ := run["key"].(string)
		if runURL, ok := urlsByCourseRunKey[runKey]; ok {
			run["enrollment_url"] = runURL
		} else {
			run["enrollment_url"] = nil
		}
	}

	return nil
}

func (s *CatalogFlowImpl) contentEnrollmentURL(catalog *models.EnterpriseCatalog, contentKey string) string {
	base := fmt.Sprintf("%s/enterprise/%s/course/%s/enroll/",
		s.enterpriseConfig.LMSBaseURL, catalog.EnterpriseUUID, url.PathEscape(contentKey))

	params := url.Values{"catalog": []string{catalog.UUID.String()}}
	if catalog.PublishAuditEnrollmentURLs {
		params.Set("audit", "true")
	}

	enrollmentURL, err := utils.UpdateQueryParameters(base, params)
	if err != nil {
		return base
	}
	return enrollmentURL
}

func (s *CatalogFlowImpl) xapiActivityID(contentResource, contentKey string) string {
	return fmt.Sprintf("%s/xapi/activities/%s/%s", s.enterpriseConfig.LMSBaseURL, contentResource, contentKey)
}

func (s *CatalogFlowImpl) customerLastModified(ctx context.Context, enterpriseUUID uuid.UUID) *time.Time {
	if s.enterpriseAPI == nil {
		return nil
	}
	modified, err := s.enterpriseAPI.CustomerLastModified(ctx, enterpriseUUID)
	if err != nil {
		log.Printf("Failed to fetch enterprise customer last modified date for %s: %v", enterpriseUUID, err)
		return nil
	}
	return modified
}

func (s *CatalogFlowImpl) catalogResponse(ctx context.Context, catalog *models.EnterpriseCatalog) (*dto.EnterpriseCatalogResponse, error) {
	resp := &dto.EnterpriseCatalogResponse{
		UUID:               catalog.UUID.String(),
		Title:              catalog.Title,
		EnterpriseCustomer: catalog.EnterpriseUUID.String(),
		CatalogModified:    catalog.Modified(),
	}

	if catalog.CatalogQuery != nil {
		queryUUID := catalog.CatalogQuery.UUID.String()
		resp.CatalogQueryUUID = &queryUUID
		resp.QueryTitle = catalog.CatalogQuery.Title
		resp.IncludeExecEd2UCourses = catalog.CatalogQuery.IncludeExecEd2UCourses
	}

	lastModified, err := s.metadataRepo.LastModifiedByCatalogQuery(ctx, catalog.CatalogQueryID)
	if err != nil {
		return nil, NewBusinessError("CATALOG_CONTENT_LAST_MODIFIED_FAILED", "Failed to aggregate content last modified", err)
	}
	resp.ContentLastModified = lastModified

	return resp, nil
}
