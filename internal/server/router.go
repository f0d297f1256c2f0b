package server

import (
	"net/http"
	"slices"

	handler "auction-engine/services/bidding/handler"
	"auction-engine/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Services are the application services the router exposes
type Services struct {
	Auctions handler.AuctionServiceInterface
	Bidding  handler.BiddingServiceInterface
	Payouts  handler.PayoutServiceInterface
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(svc Services, allowedOrigins []string) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(cors.New(corsConfig(allowedOrigins)))

	auctionHandler := handler.NewAuctionHandler(svc.Auctions)
	biddingHandler := handler.NewBiddingHandler(svc.Bidding)
	payoutHandler := handler.NewPayoutHandler(svc.Payouts)

	router.GET("/healthz", func(c *gin.Context) {
		utils.JSONResponse(c, http.StatusOK, gin.H{"healthy": true}, "ok")
	})

	auctions := router.Group("/auctions")
	{
		auctions.POST("", auctionHandler.CreateAuctionHandler)
		auctions.GET("", auctionHandler.ListAuctionsHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionHandler)
		auctions.POST("/:auction_id/activate", auctionHandler.ActivateHandler)
		auctions.POST("/:auction_id/pause", auctionHandler.PauseHandler)
		auctions.POST("/:auction_id/resume", auctionHandler.ResumeHandler)
		auctions.POST("/:auction_id/cancel", auctionHandler.CancelHandler)

		auctions.POST("/:auction_id/bids", biddingHandler.PlaceBidHandler)
		auctions.GET("/:auction_id/bids", biddingHandler.ListBidsHandler)
		auctions.GET("/:auction_id/winning", biddingHandler.GetWinningBidHandler)
	}

	bidders := router.Group("/bidders")
	{
		bidders.GET("/:bidder_id/auctions", biddingHandler.GetAuctionsByBidderHandler)
	}

	sellers := router.Group("/sellers")
	{
		sellers.GET("/:seller_id/balance", payoutHandler.GetBalanceHandler)
		sellers.POST("/:seller_id/releases", payoutHandler.ReleaseHandler)
		sellers.POST("/:seller_id/withdrawals", payoutHandler.WithdrawHandler)
		sellers.GET("/:seller_id/payouts", payoutHandler.ListPayoutsHandler)
		sellers.POST("/:seller_id/payout-methods", payoutHandler.LinkMethodHandler)
		sellers.GET("/:seller_id/payout-methods", payoutHandler.ListMethodsHandler)
	}

	methods := router.Group("/payout-methods")
	{
		methods.PUT("/:method_id/default", payoutHandler.SetDefaultHandler)
		methods.DELETE("/:method_id", payoutHandler.DeleteMethodHandler)
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cfg
}
