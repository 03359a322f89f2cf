package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// exportUserID prefers the user_id query parameter over the header identity.
// Browser download links cannot set headers, so exports accept the id in the
// URL the way the rest of the API accepts X-User-Id.
func (s *Server) exportUserID(c *gin.Context) uint {
	if raw := c.Query("user_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil && id > 0 {
			return uint(id)
		}
	}
	return currentUserID(c)
}

// attachment sets a Content-Disposition header safe for non-ASCII filenames.
func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
}

// GET /api/contacts/export
func (s *Server) exportCSV(c *gin.Context) {
	userID := s.exportUserID(c)

	data, err := s.contacts.ExportCSV(userID)
	if err != nil {
		respondError(c, 500, "导出失败")
		return
	}

	attachment(c, fmt.Sprintf("通讯录_%d.csv", userID))
	c.Data(200, "text/csv; charset=utf-8", data)
}

// GET /api/contacts/export/excel
func (s *Server) exportExcel(c *gin.Context) {
	userID := s.exportUserID(c)

	f, err := s.contacts.ExportExcel(userID)
	if err != nil {
		respondError(c, 500, "导出失败")
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		respondError(c, 500, "导出失败")
		return
	}

	attachment(c, fmt.Sprintf("通讯录_%d.xlsx", userID))
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// POST /api/contacts/import/excel
func (s *Server) importExcel(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, 400, "未上传文件")
		return
	}
	defer file.Close()

	if header.Filename == "" || !strings.HasSuffix(header.Filename, ".xlsx") {
		respondError(c, 400, "请上传.xlsx文件")
		return
	}
	if header.Size > s.cfg.MaxUploadMB*1024*1024 {
		respondError(c, 413, "文件过大")
		return
	}

	// Imported rows always land ungrouped; row group cells are ignored.
	success, fail := s.contacts.ImportExcel(file, currentUserID(c), 0)

	var message string
	if success > 0 {
		message = fmt.Sprintf("导入成功%d条，失败%d条（空值/重复手机号已自动处理）", success, fail)
	} else {
		message = fmt.Sprintf("导入成功%d条，失败%d条（请检查Excel数据格式）", success, fail)
	}
	respond(c, 200, message, gin.H{"success": success, "fail": fail})
}
