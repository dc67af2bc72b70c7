package service

import (
	"context"
	"strings"

	"rentalshop-backend/internal/domain"
	"rentalshop-backend/internal/repository"
)

type toolService struct {
	toolRepo repository.ToolRepository
}

func NewToolService(toolRepo repository.ToolRepository) ToolService {
	return &toolService{toolRepo: toolRepo}
}

func validateTool(tool *domain.Tool) error {
	if strings.TrimSpace(tool.Name) == "" {
		return domain.Validationf("tool name is required")
	}
	if tool.Category != domain.ToolCategoryPowerTool && tool.Category != domain.ToolCategoryAccessory {
		return domain.Validationf("tool category must be %q or %q",
			domain.ToolCategoryPowerTool, domain.ToolCategoryAccessory)
	}
	if tool.PricePaise <= 0 {
		return domain.Validationf("tool price must be greater than zero")
	}
	if tool.AvailableCount < 0 {
		return domain.Validationf("available count cannot be negative")
	}
	return nil
}

func (s *toolService) AddTool(ctx context.Context, tool *domain.Tool) error {
	if err := validateTool(tool); err != nil {
		return err
	}
	return s.toolRepo.Create(ctx, tool)
}

func (s *toolService) GetTool(ctx context.Context, id int64) (*domain.Tool, error) {
	return s.toolRepo.GetByID(ctx, id)
}

func (s *toolService) UpdateTool(ctx context.Context, tool *domain.Tool) error {
	if err := validateTool(tool); err != nil {
		return err
	}
	return s.toolRepo.Update(ctx, tool)
}

func (s *toolService) DeleteTool(ctx context.Context, id int64) error {
	return s.toolRepo.Delete(ctx, id)
}

func (s *toolService) ListTools(ctx context.Context, page, pageSize int32) ([]domain.Tool, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return s.toolRepo.List(ctx, page, pageSize)
}
