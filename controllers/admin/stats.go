package adminControllers

import (
	"context"
	"net/http"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/iterator"
	"gorm.io/gorm"

	"github.com/itzkennedydev/Gruby-Web-sub003/auth"
	"github.com/itzkennedydev/Gruby-Web-sub003/models"
)

// Firestore collections feeding the dashboard. Waitlist signups and abuse
// reports are written by the landing site, not this service.
const (
	collectionWaitlist = "waitlist"
	collectionReports  = "reports"
)

func countCollection(ctx context.Context, client *firestore.Client, name string) (int64, error) {
	iter := client.Collection(name).Documents(ctx)
	defer iter.Stop()
	var n int64
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			return n, nil
		}
		if err != nil {
			return 0, err
		}
		n++
	}
}

// GET /admin/stats
//
// Aggregates dashboard counts: marketplace counts from Postgres plus
// content-site counts from Firestore. Firestore counts degrade to -1 when
// the document store is unreachable so the marketplace numbers still render.
func StatsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var cooks, products, completedOrders int64
		if err := db.WithContext(ctx).Model(&models.HomeCook{}).Count(&cooks).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate stats"})
			return
		}
		if err := db.WithContext(ctx).Model(&models.Product{}).Count(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate stats"})
			return
		}
		if err := db.WithContext(ctx).Model(&models.Order{}).
			Where("status = ?", models.OrderStatusCompleted).
			Count(&completedOrders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate stats"})
			return
		}

		waitlist, reports := int64(-1), int64(-1)
		if app := auth.App(); app != nil {
			fs, err := app.Firestore(ctx)
			if err != nil {
				log.Error().Err(err).Msg("firestore client unavailable")
			} else {
				defer fs.Close()
				if n, err := countCollection(ctx, fs, collectionWaitlist); err != nil {
					log.Error().Err(err).Msg("waitlist count failed")
				} else {
					waitlist = n
				}
				if n, err := countCollection(ctx, fs, collectionReports); err != nil {
					log.Error().Err(err).Msg("reports count failed")
				} else {
					reports = n
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"home_cooks":       cooks,
			"products":         products,
			"completed_orders": completedOrders,
			"waitlist_signups": waitlist,
			"reports":          reports,
		})
	}
}
