package controllers

import (
	"github.com/PaulExplorer/OeuvresTrack/internal/models"
	"github.com/sirupsen/logrus"
)

// TierUnknown collects items without a recognized rank
const TierUnknown = "Unknown"

// tierRanks are the fixed buckets of a tier list, best first
var tierRanks = []string{"S", "A", "B", "C", "D", "E", "F"}

// TierItem is one ranked work inside a tier bucket
type TierItem struct {
	Rank   string           `json:"rank"`
	Type   models.MediaType `json:"type"`
	Status models.Status    `json:"status"`
	ID     string           `json:"id"`
	Title  string           `json:"title"`
	Image  models.Image     `json:"image"`
}

// BuildTierList groups every tracked item of a user by rank into the fixed
// S..F buckets; an empty or unrecognized rank lands in Unknown. Pure read.
func (c *ListController) BuildTierList(userID uint64) (map[string][]TierItem, error) {
	tiers := make(map[string][]TierItem, len(tierRanks)+1)
	for _, rank := range tierRanks {
		tiers[rank] = []TierItem{}
	}
	tiers[TierUnknown] = []TierItem{}

	progresses, err := c.progress.ProgressByUser(userID)
	if err != nil {
		return nil, err
	}

	for _, progress := range progresses {
		item, err := c.catalog.GetCatalogItem(progress.Type, progress.ItemID)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"user_id": userID,
				"type":    progress.Type,
				"item_id": progress.ItemID,
			}).Warn("Tracked item without catalog item, skipping")
			continue
		}

		bucket := progress.Rank
		if _, ok := tiers[bucket]; !ok || bucket == "" {
			bucket = TierUnknown
		}
		tiers[bucket] = append(tiers[bucket], TierItem{
			Rank:   progress.Rank,
			Type:   progress.Type,
			Status: progress.Status,
			ID:     progress.ItemID,
			Title:  item.Title,
			Image:  item.Image,
		})
	}

	return tiers, nil
}
