/*
Copyright 2023.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package accesskey_controller

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	k8sapierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/deuxfleurs-fr/garage-operator/api/v1alpha1"
	"github.com/deuxfleurs-fr/garage-operator/internal/helpers"
)

// secretNamespacedName resolves the Secret the credentials are written to,
// defaulting to "<name>.<bucket>.<garage>.key" in the CR's namespace when
// spec.secretRef is unset.
func secretNamespacedName(accessKey *v1alpha1.AccessKey) types.NamespacedName {
	if accessKey.Spec.SecretRef != nil {
		return helpers.ResolveNamespacedName(*accessKey.Spec.SecretRef, accessKey.Namespace)
	}
	name := fmt.Sprintf("%s.%s.%s.key", accessKey.Name, accessKey.Spec.BucketRef.Name, accessKey.Spec.GarageRef.Name)
	return types.NamespacedName{Name: name, Namespace: accessKey.Namespace}
}

// materializeSecret writes the one-time credentials into the Kubernetes
// Secret named by secretNamespacedName, owned by accessKey.
func (r *AccessKeyReconciler) materializeSecret(
	ctx context.Context,
	accessKey *v1alpha1.AccessKey,
	accessKeyID, secretAccessKey string,
) error {
	logger := log.FromContext(ctx)
	name := secretNamespacedName(accessKey)

	labels := map[string]string{"app.kubernetes.io/created-by": "garage-operator"}
	for k, v := range accessKey.Labels {
		labels[k] = v
	}

	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name.Name,
			Namespace: name.Namespace,
			Labels:    labels,
		},
		Type: corev1.SecretTypeOpaque,
		Data: map[string][]byte{
			"accessKeyId":     []byte(accessKeyID),
			"secretAccessKey": []byte(secretAccessKey),
		},
	}

	if name.Namespace == accessKey.Namespace {
		if err := ctrl.SetControllerReference(accessKey, secret, r.Scheme); err != nil {
			logger.Error(err, "Could not set owner of access key secret")
			return err
		}
	}

	existing := &corev1.Secret{}
	err := r.Get(ctx, name, existing)
	if err == nil {
		existing.Data = secret.Data
		existing.Type = secret.Type
		return r.Update(ctx, existing)
	}
	if !k8sapierrors.IsNotFound(err) {
		return err
	}
	return r.Create(ctx, secret)
}
