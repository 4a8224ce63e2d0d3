package entity

// Re-export entity types so callers can depend on a single package.

import (
	"removebg/internal/entity/common"
	"removebg/internal/entity/db"
	"removebg/internal/entity/dto"
)

type Meta = common.Meta

type DbHistory = db.History

const MaxRecentHistory = db.MaxRecentHistory

type HistoryItem = dto.HistoryItem
type HistoryListResponse = dto.HistoryListResponse
type DashboardCard = dto.DashboardCard
type DashboardPage = dto.DashboardPage
