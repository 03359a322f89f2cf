package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"contact-book-go/internal/models"
)

// mobilePattern is the accepted phone1 shape on import: 11 digits, starting
// with 1, second digit 3-9.
var mobilePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

// favoriteTokens are the cell values read as "favorite" on import.
var favoriteTokens = map[string]bool{
	"是": true, "1": true, "true": true, "True": true,
}

const (
	sheetName      = "通讯录"
	importColumns  = 10
	ungroupedLabel = "未分组"
)

var csvHeader = []string{"姓名", "电话1", "电话2", "邮箱1", "邮箱2", "社交账号", "地址", "所属分组", "是否收藏"}

var excelHeader = []string{"姓名", "电话1", "电话2", "邮箱1", "邮箱2", "社交账号", "地址", "分组ID", "分组名称", "是否收藏"}

// ImportExcel reads an xlsx workbook and inserts its rows as contacts of
// userID, forcing every row into forceGroupID. This is a normalization
// pipeline, not strict validation: empty names get a synthetic placeholder,
// malformed phones get a synthesized number, and colliding phones get a new
// last digit. Per-row insert failures are counted and skipped; a structural
// failure (bad workbook, unexpected storage error) rolls back everything and
// reports (0, 1).
func (s *ContactService) ImportExcel(r io.Reader, userID uint, forceGroupID uint) (int, int) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		logger.Error().Err(err).Msg("import: opening workbook failed")
		return 0, 1
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		logger.Error().Err(err).Msg("import: reading rows failed")
		return 0, 1
	}

	success, fail := 0, 0
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		for i, row := range rows {
			if i == 0 {
				continue // header
			}
			rowNum := i + 1

			cells := make([]string, importColumns)
			copy(cells, row)

			name := strings.TrimSpace(cells[0])
			if name == "" {
				name = fmt.Sprintf("未知姓名_%d", rowNum)
			}

			phone1 := strings.TrimSpace(cells[1])
			if !mobilePattern.MatchString(phone1) {
				phone1 = randomMobile()
			} else {
				deduped, err := deduplicatePhone(tx, phone1, userID)
				if err != nil {
					return err
				}
				phone1 = deduped
			}

			contact := models.Contact{
				Name:        name,
				Phone1:      phone1,
				Phone2:      strings.TrimSpace(cells[2]),
				Email1:      strings.TrimSpace(cells[3]),
				Email2:      strings.TrimSpace(cells[4]),
				SocialMedia: strings.TrimSpace(cells[5]),
				Address:     strings.TrimSpace(cells[6]),
				GroupID:     forceGroupID, // row group cells are ignored
				UserID:      userID,
				IsFavorite:  favoriteTokens[strings.TrimSpace(cells[9])],
			}
			if err := tx.Create(&contact).Error; err != nil {
				fail++
				logger.Warn().Err(err).Int("row", rowNum).Msg("import: row insert failed")
				continue
			}
			success++
			logger.Info().Int("row", rowNum).Str("name", name).Str("phone1", phone1).Msg("import: row inserted")
		}
		return nil
	})
	if txErr != nil {
		logger.Error().Err(txErr).Msg("import: rolled back")
		return 0, 1
	}
	return success, fail
}

// randomMobile synthesizes a phone number with a fixed 138 prefix.
func randomMobile() string {
	return fmt.Sprintf("138%08d", rand.Intn(100000000))
}

// deduplicatePhone returns phone1 unchanged when it is free for userID.
// Otherwise it replaces the last digit with a random one a bounded number of
// times, then falls back to a deterministic sweep of the last four digits so
// termination is guaranteed.
func deduplicatePhone(tx *gorm.DB, phone1 string, userID uint) (string, error) {
	taken := func(p string) (bool, error) {
		var count int64
		err := tx.Model(&models.Contact{}).Where("phone1 = ? AND user_id = ?", p, userID).Count(&count).Error
		return count > 0, err
	}

	used, err := taken(phone1)
	if err != nil {
		return "", err
	}
	if !used {
		return phone1, nil
	}

	for attempt := 0; attempt < 32; attempt++ {
		candidate := phone1[:len(phone1)-1] + fmt.Sprintf("%d", rand.Intn(10))
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
	}

	for n := 0; n < 10000; n++ {
		candidate := phone1[:len(phone1)-4] + fmt.Sprintf("%04d", n)
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free phone number near %s for user %d", phone1, userID)
}

// ExportCSV renders all contacts of userID as delimited text, prefixed with a
// UTF-8 BOM so spreadsheet tools decode the encoding correctly.
func (s *ContactService) ExportCSV(userID uint) ([]byte, error) {
	contacts, err := s.ListAll(userID, FavoriteAll)
	if err != nil {
		return nil, err
	}
	groupNames, err := s.groupNameMap(userID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("\uFEFF")
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, c := range contacts {
		if err := w.Write([]string{
			c.Name, c.Phone1, c.Phone2, c.Email1, c.Email2,
			c.SocialMedia, c.Address, groupLabel(groupNames, c.GroupID), favoriteLabel(c.IsFavorite),
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportExcel builds an xlsx workbook with one row per contact. Callers own
// the returned file and must Close it.
func (s *ContactService) ExportExcel(userID uint) (*excelize.File, error) {
	contacts, err := s.ListAll(userID, FavoriteAll)
	if err != nil {
		return nil, err
	}
	groupNames, err := s.groupNameMap(userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		f.Close()
		return nil, err
	}

	header := make([]interface{}, len(excelHeader))
	for i, h := range excelHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}

	for i, c := range contacts {
		row := []interface{}{
			c.Name, c.Phone1, c.Phone2, c.Email1, c.Email2,
			c.SocialMedia, c.Address, c.GroupID, groupLabel(groupNames, c.GroupID), favoriteLabel(c.IsFavorite),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func (s *ContactService) groupNameMap(userID uint) (map[uint]string, error) {
	var groups []models.Group
	if err := s.db.Where("user_id = ?", userID).Find(&groups).Error; err != nil {
		return nil, err
	}
	m := make(map[uint]string, len(groups))
	for _, g := range groups {
		m[g.ID] = g.GroupName
	}
	return m, nil
}

func groupLabel(names map[uint]string, groupID uint) string {
	if name, ok := names[groupID]; ok {
		return name
	}
	return ungroupedLabel
}

func favoriteLabel(isFavorite bool) string {
	if isFavorite {
		return "是"
	}
	return "否"
}
