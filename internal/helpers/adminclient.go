package helpers

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/deuxfleurs-fr/garage-operator/api/v1alpha1"
	"github.com/deuxfleurs-fr/garage-operator/internal/garageadmin"
)

const adminSecretTokenKey = "token"

// AdminClientFactory builds a garageadmin.Client for a Garage CR, so
// reconcilers under test can substitute a fake without reaching the
// network.
type AdminClientFactory func(ctx context.Context, c client.Client, garage *v1alpha1.Garage) (*garageadmin.Client, error)

// GetAdminClient resolves the Garage's admin secret and returns a client
// pointed at its in-cluster Service DNS name.
func GetAdminClient(ctx context.Context, c client.Client, garage *v1alpha1.Garage) (*garageadmin.Client, error) {
	secretRef := types.NamespacedName{Name: garage.Name + "-admin.key", Namespace: garage.Namespace}
	if garage.Spec.Secrets.Admin != nil {
		secretRef = ResolveNamespacedName(*garage.Spec.Secrets.Admin, garage.Namespace)
	}

	secret := &corev1.Secret{}
	if err := c.Get(ctx, secretRef, secret); err != nil {
		return nil, fmt.Errorf("reading admin secret %s: %w", secretRef, err)
	}
	token, ok := secret.Data[adminSecretTokenKey]
	if !ok {
		return nil, fmt.Errorf("admin secret %s has no %q key", secretRef, adminSecretTokenKey)
	}

	baseURL := fmt.Sprintf("http://%s.%s.svc:%d", garage.Name, garage.Namespace, garage.Spec.Config.Ports.Admin)
	return garageadmin.NewClient(baseURL, string(token)), nil
}
