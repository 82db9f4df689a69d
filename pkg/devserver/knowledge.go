package devserver

import (
	"sort"

	"github.com/gofiber/fiber/v2"
)

// Document is an uploaded knowledge-base file.
type Document struct {
	ID         int    `json:"document_id"`
	ModuleID   int    `json:"module_id"`
	Title      string `json:"title"`
	FilePath   string `json:"file_path"`
	UploadedBy string `json:"uploaded_by"`
	UploadedAt string `json:"uploaded_at"`
	TeamID     int    `json:"team_id"`
	ModuleName string `json:"module_name"`

	chunks int
}

// ModuleStats summarizes what is indexed for a module.
type ModuleStats struct {
	ModuleID        int `json:"module_id"`
	DocumentCount   int `json:"document_count"`
	TotalEmbeddings int `json:"total_embeddings"`
}

func seedDocuments() []Document {
	return []Document{
		{ID: 1, ModuleID: 1, Title: "Laptop setup", FilePath: "uploads/1/laptop-setup.md", UploadedBy: "dev", UploadedAt: "2024-04-02 10:12:00", TeamID: 1, ModuleName: "Onboarding", chunks: 12},
		{ID: 2, ModuleID: 1, Title: "Code review guide", FilePath: "uploads/1/code-review.pdf", UploadedBy: "dev", UploadedAt: "2024-04-03 16:40:00", TeamID: 1, ModuleName: "Onboarding", chunks: 30},
		{ID: 3, ModuleID: 2, Title: "Refunds", FilePath: "uploads/2/refunds.md", UploadedBy: "dev", UploadedAt: "2024-04-10 08:05:00", TeamID: 2, ModuleName: "Payments API", chunks: 8},
	}
}

// listDocuments returns every document ordered by module name, then title.
func (s *state) listDocuments() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Document, len(s.documents))
	copy(out, s.documents)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ModuleName != out[j].ModuleName {
			return out[i].ModuleName < out[j].ModuleName
		}
		return out[i].Title < out[j].Title
	})
	return out
}

func (s *state) moduleStats(moduleID int) (ModuleStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	known := false
	for _, m := range s.modules {
		if m.ID == moduleID {
			known = true
			break
		}
	}
	if !known {
		return ModuleStats{}, false
	}

	stats := ModuleStats{ModuleID: moduleID}
	for _, d := range s.documents {
		if d.ModuleID == moduleID {
			stats.DocumentCount++
			stats.TotalEmbeddings += d.chunks
		}
	}
	return stats, true
}

func (s *Server) handleListDocuments(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"documents": s.state.listDocuments()})
}

func (s *Server) handleModuleStats(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(detail("module id must be an integer"))
	}
	stats, ok := s.state.moduleStats(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(detail("Module not found"))
	}
	return c.JSON(stats)
}
