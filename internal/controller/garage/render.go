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

package garage_controller

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/intstr"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/deuxfleurs-fr/garage-operator/api/v1alpha1"
)

// secretTokenKey matches the admin client's adminSecretTokenKey
// convention: both the admin and rpc secrets carry their bearer value
// under "token".
const secretTokenKey = "token"

const configMountPath = "/etc/garage.toml"
const metaMountPath = "/mnt/meta"

func selectorLabels(garage *v1alpha1.Garage) map[string]string {
	return map[string]string{
		"app.kubernetes.io/name":     "garage",
		"app.kubernetes.io/instance": garage.Name,
	}
}

func labels(garage *v1alpha1.Garage) map[string]string {
	l := selectorLabels(garage)
	l["app.kubernetes.io/managed-by"] = "garage-operator"
	return l
}

func configMapName(garage *v1alpha1.Garage) string { return garage.Name + "-config" }
func metaPVCName(garage *v1alpha1.Garage) string    { return garage.Name + "-meta" }

func dataPVCName(garage *v1alpha1.Garage, i int) string {
	return fmt.Sprintf("%s-data-%d", garage.Name, i)
}

func dataMountPath(i int) string { return fmt.Sprintf("/mnt/data-%d", i) }

// metaClaimName returns the PVC name the Deployment mounts for metadata
// storage: the user-provided existing claim, or the one this reconciler
// renders.
func metaClaimName(garage *v1alpha1.Garage) string {
	if garage.Spec.Storage.Meta.ExistingClaim != "" {
		return garage.Spec.Storage.Meta.ExistingClaim
	}
	return metaPVCName(garage)
}

// dataClaimName mirrors metaClaimName for the i-th data claim.
func dataClaimName(garage *v1alpha1.Garage, i int) string {
	spec := garage.Spec.Storage.Data[i]
	if spec.ExistingClaim != "" {
		return spec.ExistingClaim
	}
	return dataPVCName(garage, i)
}

// buildPVC renders the PersistentVolumeClaim for a storage role. Callers
// must skip rendering when spec.ExistingClaim is set.
func buildPVC(garage *v1alpha1.Garage, name string, spec v1alpha1.PvcSpec) (*corev1.PersistentVolumeClaim, error) {
	quantity, err := resource.ParseQuantity(spec.Size)
	if err != nil {
		return nil, fmt.Errorf("storage size %q: %w", spec.Size, err)
	}

	pvc := &corev1.PersistentVolumeClaim{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: garage.Namespace,
			Labels:    labels(garage),
		},
		Spec: corev1.PersistentVolumeClaimSpec{
			AccessModes: []corev1.PersistentVolumeAccessMode{corev1.ReadWriteOnce},
			Resources: corev1.VolumeResourceRequirements{
				Requests: corev1.ResourceList{corev1.ResourceStorage: quantity},
			},
		},
	}
	if spec.StorageClass != "" {
		pvc.Spec.StorageClassName = &spec.StorageClass
	}
	return pvc, nil
}

// buildConfigMap renders the Garage TOML configuration body from
// spec.config and the meta/data mount paths. No secret reference appears
// in the body: the admin and rpc tokens reach the container only as
// environment variables (see buildDeployment).
func buildConfigMap(garage *v1alpha1.Garage) *corev1.ConfigMap {
	ports := garage.Spec.Config.Ports

	dataDirs := make([]string, len(garage.Spec.Storage.Data))
	for i := range garage.Spec.Storage.Data {
		dataDirs[i] = fmt.Sprintf("%q", dataMountPath(i))
	}

	body := fmt.Sprintf(`metadata_dir = %q
data_dir = [%s]
db_engine = "sqlite"

replication_mode = %q

rpc_bind_addr = "[::]:%d"
rpc_public_addr = "127.0.0.1:%d"

[s3_api]
s3_region = %q
api_bind_addr = "[::]:%d"

[s3_web]
bind_addr = "[::]:%d"
root_domain = ".web.garage"

[admin]
api_bind_addr = "[::]:%d"
`,
		metaMountPath,
		strings.Join(dataDirs, ", "),
		garage.Spec.Config.ReplicationMode,
		ports.Rpc, ports.Rpc,
		garage.Spec.Config.Region, ports.S3Api,
		ports.S3Web,
		ports.Admin,
	)

	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      configMapName(garage),
			Namespace: garage.Namespace,
			Labels:    labels(garage),
		},
		Data: map[string]string{"garage.toml": body},
	}
}

// buildService renders the single Service exposing the four named ports.
func buildService(garage *v1alpha1.Garage) *corev1.Service {
	ports := garage.Spec.Config.Ports
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      garage.Name,
			Namespace: garage.Namespace,
			Labels:    labels(garage),
		},
		Spec: corev1.ServiceSpec{
			Selector: selectorLabels(garage),
			Ports: []corev1.ServicePort{
				{Name: "admin", Port: int32(ports.Admin), TargetPort: intstr.FromInt32(int32(ports.Admin))},
				{Name: "rpc", Port: int32(ports.Rpc), TargetPort: intstr.FromInt32(int32(ports.Rpc))},
				{Name: "s3-api", Port: int32(ports.S3Api), TargetPort: intstr.FromInt32(int32(ports.S3Api))},
				{Name: "s3-web", Port: int32(ports.S3Web), TargetPort: intstr.FromInt32(int32(ports.S3Web))},
			},
		},
	}
}

// buildDeployment renders the single-replica Deployment running the Garage
// container, mounting the meta/data claims, the rendered config and
// projecting the admin/rpc secrets as environment variables.
func buildDeployment(garage *v1alpha1.Garage, image string, adminSecret, rpcSecret types.NamespacedName) *appsv1.Deployment {
	replicas := int32(1)

	volumes := []corev1.Volume{
		{
			Name: "meta",
			VolumeSource: corev1.VolumeSource{
				PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{ClaimName: metaClaimName(garage)},
			},
		},
		{
			Name: "config",
			VolumeSource: corev1.VolumeSource{
				ConfigMap: &corev1.ConfigMapVolumeSource{
					LocalObjectReference: corev1.LocalObjectReference{Name: configMapName(garage)},
				},
			},
		},
	}
	mounts := []corev1.VolumeMount{
		{Name: "meta", MountPath: metaMountPath},
		{Name: "config", MountPath: configMountPath, SubPath: "garage.toml"},
	}
	for i := range garage.Spec.Storage.Data {
		name := "data-" + strconv.Itoa(i)
		volumes = append(volumes, corev1.Volume{
			Name: name,
			VolumeSource: corev1.VolumeSource{
				PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{ClaimName: dataClaimName(garage, i)},
			},
		})
		mounts = append(mounts, corev1.VolumeMount{Name: name, MountPath: dataMountPath(i)})
	}

	ports := garage.Spec.Config.Ports
	containerPorts := []corev1.ContainerPort{
		{Name: "admin", ContainerPort: int32(ports.Admin)},
		{Name: "rpc", ContainerPort: int32(ports.Rpc)},
		{Name: "s3-api", ContainerPort: int32(ports.S3Api)},
		{Name: "s3-web", ContainerPort: int32(ports.S3Web)},
	}

	env := []corev1.EnvVar{
		{
			Name: "GARAGE_ADMIN_TOKEN",
			ValueFrom: &corev1.EnvVarSource{
				SecretKeyRef: &corev1.SecretKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: adminSecret.Name},
					Key:                  secretTokenKey,
				},
			},
		},
		{
			Name: "GARAGE_RPC_SECRET",
			ValueFrom: &corev1.EnvVarSource{
				SecretKeyRef: &corev1.SecretKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: rpcSecret.Name},
					Key:                  secretTokenKey,
				},
			},
		},
	}

	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      garage.Name,
			Namespace: garage.Namespace,
			Labels:    labels(garage),
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: selectorLabels(garage)},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels(garage)},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{
						{
							Name:         "garage",
							Image:        image,
							Args:         []string{"server"},
							Ports:        containerPorts,
							Env:          env,
							VolumeMounts: mounts,
						},
					},
					Volumes: volumes,
				},
			},
		},
	}
}

// apply server-side-applies obj with force-ownership under fieldManager,
// setting garage as its controller owner.
func (r *GarageReconciler) apply(ctx context.Context, garage *v1alpha1.Garage, obj client.Object) error {
	gvks, _, err := r.Scheme.ObjectKinds(obj)
	if err != nil || len(gvks) == 0 {
		return fmt.Errorf("resolving GroupVersionKind for %T: %w", obj, err)
	}
	obj.GetObjectKind().SetGroupVersionKind(gvks[0])

	if err := ctrl.SetControllerReference(garage, obj, r.Scheme); err != nil {
		return fmt.Errorf("setting owner reference on %T: %w", obj, err)
	}

	return r.Patch(ctx, obj, client.Apply, client.ForceOwnership, client.FieldOwner(fieldManager))
}
