// Package dashboard serves the brand and creator back offices: order lists,
// status changes, deliveries and settlements.
package dashboard

import (
	"context"

	"modelhubweb/models"
	"modelhubweb/services"
	"modelhubweb/uistore"
)

const OrdersPerPage = 20

type BrandDashboard struct {
	orders    services.OrderServiceProvider
	favorites services.FavoriteServiceProvider
	notifier  uistore.Notifier
}

func NewBrandDashboard(orders services.OrderServiceProvider, favorites services.FavoriteServiceProvider, notifier uistore.Notifier) *BrandDashboard {
	return &BrandDashboard{orders: orders, favorites: favorites, notifier: notifier}
}

func (d *BrandDashboard) Orders(ctx context.Context, page int) (*models.OrdersPage, error) {
	if page < 1 {
		page = 1
	}
	return d.orders.ListOrders(ctx, models.RoleBrand, page, OrdersPerPage)
}

func (d *BrandDashboard) OrderDetail(ctx context.Context, orderID string) (*models.Order, error) {
	return d.orders.GetOrder(ctx, orderID)
}

func (d *BrandDashboard) DeliveryFiles(ctx context.Context, orderID string) (*models.DeliveryFilesPage, error) {
	return d.orders.GetDeliveryFiles(ctx, orderID)
}

func (d *BrandDashboard) Favorites(ctx context.Context) (*models.FavoritesPage, error) {
	return d.favorites.GetFavorites(ctx)
}

func (d *BrandDashboard) RemoveFavorite(ctx context.Context, modelID string) error {
	if err := d.favorites.RemoveFavorite(ctx, modelID); err != nil {
		notify(d.notifier, models.ToastError, services.UserMessage(err, "즐겨찾기 삭제에 실패했습니다."))
		return err
	}
	notify(d.notifier, models.ToastSuccess, "즐겨찾기에서 삭제되었습니다.")
	return nil
}

func notify(n uistore.Notifier, variant models.ToastVariant, message string) {
	if n != nil {
		n.AddToast(variant, message, 0)
	}
}
