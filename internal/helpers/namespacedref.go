package helpers

import (
	"context"
	"fmt"

	k8sapierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/deuxfleurs-fr/garage-operator/api/v1alpha1"
)

// ResolveNamespacedName turns a NamespacedRef into a types.NamespacedName,
// defaulting Namespace to fallbackNamespace (the referencing resource's own
// namespace) when the ref leaves it empty.
func ResolveNamespacedName(ref v1alpha1.NamespacedRef, fallbackNamespace string) types.NamespacedName {
	namespace := ref.Namespace
	if namespace == "" {
		namespace = fallbackNamespace
	}
	return types.NamespacedName{Name: ref.Name, Namespace: namespace}
}

// GetGarage resolves ref against fallbackNamespace and fetches the Garage
// CR it names.
func GetGarage(ctx context.Context, c client.Client, ref v1alpha1.NamespacedRef, fallbackNamespace string) (*v1alpha1.Garage, error) {
	garage := &v1alpha1.Garage{}
	if err := c.Get(ctx, ResolveNamespacedName(ref, fallbackNamespace), garage); err != nil {
		if k8sapierrors.IsNotFound(err) {
			return nil, fmt.Errorf("garage %s not found", ResolveNamespacedName(ref, fallbackNamespace))
		}
		return nil, err
	}
	return garage, nil
}

// GetBucket resolves ref against fallbackNamespace and fetches the Bucket
// CR it names.
func GetBucket(ctx context.Context, c client.Client, ref v1alpha1.NamespacedRef, fallbackNamespace string) (*v1alpha1.Bucket, error) {
	bucket := &v1alpha1.Bucket{}
	if err := c.Get(ctx, ResolveNamespacedName(ref, fallbackNamespace), bucket); err != nil {
		if k8sapierrors.IsNotFound(err) {
			return nil, fmt.Errorf("bucket %s not found", ResolveNamespacedName(ref, fallbackNamespace))
		}
		return nil, err
	}
	return bucket, nil
}

// PermissionsFriendly projects an AccessKeyPermissions triple into the
// "RWO"-style string spec.md requires, with unset positions rendered "-".
func PermissionsFriendly(perms v1alpha1.AccessKeyPermissions) string {
	result := []byte("---")
	if perms.Read {
		result[0] = 'R'
	}
	if perms.Write {
		result[1] = 'W'
	}
	if perms.Owner {
		result[2] = 'O'
	}
	return string(result)
}
